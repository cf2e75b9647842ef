package models

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// FavoritesPlaylist is the built-in playlist mirrored by [Song.IsFavorite]. It always exists and cannot be deleted.
const FavoritesPlaylist = "Favorites"

// Song is a saved lyrics entry.
type Song struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Artist         string     `json:"artist"`
	Lyrics         string     `json:"lyrics"`
	OriginalLyrics string     `json:"original_lyrics"`
	CreatedAt      time.Time  `json:"created_at"`
	LastPlayed     *time.Time `json:"last_played"`
	PlayCount      int        `json:"play_count"`
	IsFavorite     bool       `json:"is_favorite"`
}

// Validate checks the fields every persisted song must carry.
func (s Song) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("song id is required")
	}
	if s.CreatedAt.IsZero() {
		return fmt.Errorf("song %s: created_at is required", s.ID)
	}
	if s.PlayCount < 0 {
		return fmt.Errorf("song %s: play_count must not be negative", s.ID)
	}
	return nil
}

// Clone returns a copy that shares no pointers with s.
func (s Song) Clone() Song {
	if s.LastPlayed != nil {
		t := *s.LastPlayed
		s.LastPlayed = &t
	}
	return s
}

// SongPatch describes an in-place update. Nil fields are left unchanged.
type SongPatch struct {
	Title          *string `json:"title,omitempty"`
	Artist         *string `json:"artist,omitempty"`
	Lyrics         *string `json:"lyrics,omitempty"`
	OriginalLyrics *string `json:"original_lyrics,omitempty"`
	IsFavorite     *bool   `json:"is_favorite,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SongPatch) Empty() bool {
	return p.Title == nil && p.Artist == nil && p.Lyrics == nil && p.OriginalLyrics == nil && p.IsFavorite == nil
}

// Apply writes the non-nil fields of p onto s.
func (p SongPatch) Apply(s *Song) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Artist != nil {
		s.Artist = *p.Artist
	}
	if p.Lyrics != nil {
		s.Lyrics = *p.Lyrics
	}
	if p.OriginalLyrics != nil {
		s.OriginalLyrics = *p.OriginalLyrics
	}
	if p.IsFavorite != nil {
		s.IsFavorite = *p.IsFavorite
	}
}

// Playlist is a named, ordered collection of song ids.
type Playlist struct {
	Name    string   `json:"name"`
	SongIDs []string `json:"song_ids"`
}

// Playlists is the persisted playlists document: name → ordered song ids.
type Playlists map[string][]string

// NewPlaylists returns a document holding only an empty Favorites playlist.
func NewPlaylists() Playlists {
	return Playlists{FavoritesPlaylist: []string{}}
}

// Validate checks names are non-empty and no playlist lists an id twice.
func (p Playlists) Validate() error {
	for name, ids := range p {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("playlist name must not be empty")
		}
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if id == "" {
				return fmt.Errorf("playlist %q: empty song id", name)
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("playlist %q: duplicate song id %s", name, id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

// Normalize ensures Favorites exists and nil id slices are empty.
func (p Playlists) Normalize() Playlists {
	if p == nil {
		return NewPlaylists()
	}
	if _, ok := p[FavoritesPlaylist]; !ok {
		p[FavoritesPlaylist] = []string{}
	}
	for name, ids := range p {
		if ids == nil {
			p[name] = []string{}
		}
	}
	return p
}

// Clone deep-copies the document.
func (p Playlists) Clone() Playlists {
	out := make(Playlists, len(p))
	for name, ids := range p {
		out[name] = slices.Clone(ids)
		if out[name] == nil {
			out[name] = []string{}
		}
	}
	return out
}

// Names returns playlist names with Favorites first and the rest sorted.
func (p Playlists) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		if name != FavoritesPlaylist {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := p[FavoritesPlaylist]; ok {
		names = append([]string{FavoritesPlaylist}, names...)
	}
	return names
}

// List returns the document as ordered [Playlist] values (see [Playlists.Names]).
func (p Playlists) List() []Playlist {
	out := make([]Playlist, 0, len(p))
	for _, name := range p.Names() {
		out = append(out, Playlist{Name: name, SongIDs: slices.Clone(p[name])})
	}
	return out
}
