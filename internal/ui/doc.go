// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a small lyrics browser:
//  1. [SongListView] : Browse, filter and favorite songs (all songs or one playlist)
//  2. [PlaylistListView] : Pick a playlist to narrow the song list
//  3. [LyricsView] : Read a song; opening it records a play
//  4. [ScrollView] : Auto-scroll the lyrics, driven by a [playback.Scroller]
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Scroll frames flow through a channel from the scroller goroutine, one message per frame, so the view never blocks.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, f, s, space, +/-, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
