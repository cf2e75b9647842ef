package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/lyrx/internal/models"
)

var (
	_ list.Item = songItem{}
	_ list.Item = playlistItem{}
)

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string { return i.song.Title + " " + i.song.Artist }
func (i songItem) Title() string {
	if i.song.IsFavorite {
		return "★ " + i.song.Title
	}
	return i.song.Title
}
func (i songItem) Description() string {
	return fmt.Sprintf("%s • %s", i.song.Artist, plays(i.song.PlayCount))
}

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	if n := len(i.playlist.SongIDs); n != 1 {
		return fmt.Sprintf("%d songs", n)
	}
	return "1 song"
}

func plays(n int) string {
	if n == 1 {
		return "1 play"
	}
	return fmt.Sprintf("%d plays", n)
}
