// Package repositories owns the two persisted halves of the library.
//
// Key Implementations:
//   - [SongRepository] : saved songs with play statistics; knows nothing about playlists
//   - [PlaylistIndex] : named ordered id lists, always holding the Favorites playlist
//   - [JSONStore] : flat-file [Store] with atomic writes and a ".backup" recovery path for corrupt files
//   - [SQLiteSongStore], [SQLitePlaylistStore] : [Store] implementations backed by the shared SQLite schema
//
// Every mutation persists synchronously before returning. A failed write is reported as [shared.ErrPersistence]
// while the in-memory state is kept so the caller can retry with Save.
package repositories
