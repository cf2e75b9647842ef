package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/playback"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSongsLoaded MsgKind = iota
	MsgPlaylistsLoaded
	MsgSongOpened
	MsgFavoriteToggled
	MsgFrame
	MsgScrollDone
)

type songsLoaded struct {
	playlist string
	songs    []models.Song
	err      error
}

type songResult struct {
	song models.Song
	err  error
}

type frameData struct {
	frames <-chan playback.Frame
	frame  playback.Frame
}

// songsLoadedMsg is the constructor for [MsgSongsLoaded]
func songsLoadedMsg(playlist string, songs []models.Song, err error) Msg {
	return Msg{kind: MsgSongsLoaded, data: songsLoaded{playlist, songs, err}}
}

// playlistsLoadedMsg is the constructor for [MsgPlaylistsLoaded]
func playlistsLoadedMsg(playlists []models.Playlist) Msg {
	return Msg{kind: MsgPlaylistsLoaded, data: playlists}
}

// songOpenedMsg is the constructor for [MsgSongOpened]
func songOpenedMsg(song models.Song, err error) Msg {
	return Msg{kind: MsgSongOpened, data: songResult{song, err}}
}

// favoriteToggledMsg is the constructor for [MsgFavoriteToggled]
func favoriteToggledMsg(song models.Song, err error) Msg {
	return Msg{kind: MsgFavoriteToggled, data: songResult{song, err}}
}

// frameMsg is the constructor for [MsgFrame]. frames identifies the run so stale frames can be dropped.
func frameMsg(frames <-chan playback.Frame, f playback.Frame) Msg {
	return Msg{kind: MsgFrame, data: frameData{frames, f}}
}

// scrollDoneMsg is the constructor for [MsgScrollDone]
func scrollDoneMsg(frames <-chan playback.Frame) Msg {
	return Msg{kind: MsgScrollDone, data: frameData{frames: frames}}
}
