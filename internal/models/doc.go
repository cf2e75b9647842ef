// Package models defines the typed records of a lyrics library.
//
//   - [Song] : a saved lyrics entry with play statistics and a favorite flag
//   - [SongPatch] : a partial update where nil fields mean "unchanged"
//   - [Playlist] : a named, ordered, duplicate-free list of song ids
//   - [Playlists] : the persisted name → ids mapping, always holding [FavoritesPlaylist]
//
// Records are validated at the storage boundary via Validate so malformed documents surface as errors instead of silent corruption.
package models
