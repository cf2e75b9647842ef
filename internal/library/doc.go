// Package library is the facade every front end (CLI, TUI, HTTP) calls.
//
// It composes [repositories.SongRepository] and [repositories.PlaylistIndex] and keeps the rules that span both:
//
//   - a song's is_favorite flag is true exactly when its id is in the Favorites playlist
//   - playlists only list ids of existing songs; deleting a song removes it everywhere
//   - title and artist are non-empty on save and update
//
// The two stores are written one after the other, never in a shared transaction. [Open] repairs drift left by an
// interrupted write, treating the songs store as authoritative. Errors wrap the sentinels in [shared] and can be
// turned into a [Result] with [Outcome].
package library
