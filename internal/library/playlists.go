package library

import (
	"fmt"
	"strings"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// CreatePlaylist adds an empty playlist named name (surrounding space is trimmed).
func (l *Library) CreatePlaylist(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name = strings.TrimSpace(name)
	if err := l.playlists.CreatePlaylist(name); err != nil {
		return err
	}
	l.logger.Info("playlist created", "name", name)
	return nil
}

// DeletePlaylist removes a playlist. The songs it listed are untouched.
func (l *Library) DeletePlaylist(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.playlists.DeletePlaylist(name); err != nil {
		return err
	}
	l.logger.Info("playlist deleted", "name", name)
	return nil
}

// AddToPlaylist appends an existing song to a playlist. added is false when it was already listed.
//
// Adding to Favorites marks the song as a favorite.
func (l *Library) AddToPlaylist(name, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	song, err := l.songs.Get(id)
	if err != nil {
		return false, err
	}
	if !l.playlists.Exists(name) {
		return false, fmt.Errorf("%w: playlist %q", shared.ErrNotFound, name)
	}

	if name == models.FavoritesPlaylist {
		if song.IsFavorite && l.playlists.Contains(name, id) {
			return false, nil
		}
		_, err := l.setFavorite(song, true)
		return err == nil, err
	}

	return l.playlists.AddSong(name, id)
}

// RemoveFromPlaylist drops a song from a playlist. Removing from Favorites clears the favorite flag.
func (l *Library) RemoveFromPlaylist(name, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if name == models.FavoritesPlaylist {
		if !l.playlists.Contains(name, id) {
			return fmt.Errorf("%w: song %s is not in playlist %q", shared.ErrNotFound, id, name)
		}
		song, err := l.songs.Get(id)
		if err != nil {
			return l.playlists.RemoveSong(name, id)
		}
		_, err = l.setFavorite(song, false)
		return err
	}

	return l.playlists.RemoveSong(name, id)
}

// Playlists lists every playlist, Favorites first.
func (l *Library) Playlists() []models.Playlist {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.playlists.Playlists().List()
}

// PlaylistSongs resolves a playlist's ids to songs in playlist order.
func (l *Library) PlaylistSongs(name string) ([]models.Song, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.playlistSongs(name)
}

func (l *Library) playlistSongs(name string) ([]models.Song, error) {
	ids, err := l.playlists.Get(name)
	if err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(ids))
	for _, id := range ids {
		song, err := l.songs.Get(id)
		if err != nil {
			l.logger.Warn("playlist references a missing song", "playlist", name, "id", id)
			continue
		}
		songs = append(songs, song)
	}
	return songs, nil
}
