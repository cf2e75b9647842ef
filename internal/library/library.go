package library

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Options configures [Open] and [New].
type Options struct {
	Logger      *log.Logger
	SongOptions []repositories.SongOption
}

// Library is the single entry point for front ends.
//
// Calls are serialized; each one finishes its writes before the next starts.
type Library struct {
	mu        sync.Mutex
	songs     *repositories.SongRepository
	playlists *repositories.PlaylistIndex
	logger    *log.Logger
	closer    io.Closer
}

// Open builds the stores selected by cfg.Storage.Backend and loads the library.
func Open(cfg *shared.Config, opts Options) (*Library, error) {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
		opts.Logger = logger
	}

	switch cfg.Storage.Backend {
	case shared.BackendSQLite:
		path := cfg.DatabasePath()
		db, err := shared.NewDatabase(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
		}
		shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)

		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
		}

		lib, err := New(repositories.NewSQLiteSongStore(db, logger), repositories.NewSQLitePlaylistStore(db, logger), opts)
		if err != nil {
			db.Close()
			return nil, err
		}
		lib.closer = db
		logger.Debug("library opened", "backend", shared.BackendSQLite, "path", path)
		return lib, nil

	default:
		songs := repositories.NewSongFileStore(cfg.SongsPath(), logger)
		playlists := repositories.NewPlaylistFileStore(cfg.PlaylistsPath(), logger)

		lib, err := New(songs, playlists, opts)
		if err != nil {
			return nil, err
		}
		logger.Debug("library opened", "backend", shared.BackendJSON, "dir", cfg.StorageDir())
		return lib, nil
	}
}

// New loads a library from the given stores and repairs any drift between them.
func New(songs repositories.Store[[]models.Song], playlists repositories.Store[models.Playlists], opts Options) (*Library, error) {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	songRepo, err := repositories.NewSongRepository(songs, logger, opts.SongOptions...)
	if err != nil {
		return nil, err
	}

	index, err := repositories.NewPlaylistIndex(playlists, logger)
	if err != nil {
		return nil, err
	}

	lib := &Library{songs: songRepo, playlists: index, logger: logger}
	lib.reconcile()
	return lib, nil
}

// Close releases the database handle when the sqlite backend is in use.
func (l *Library) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// reconcile treats the songs store as authoritative: playlist entries for missing songs are dropped
// and Favorites is rebuilt from the is_favorite flags. Repair failures are logged, not returned.
func (l *Library) reconcile() {
	dropped, err := l.playlists.Retain(l.songs.Has)
	if err != nil {
		l.logger.Warn("failed to persist playlist repair", "error", err)
	}
	if dropped > 0 {
		l.logger.Warn("dropped playlist entries for missing songs", "count", dropped)
	}

	synced := 0
	for _, song := range l.songs.List() {
		inFavorites := l.playlists.Contains(models.FavoritesPlaylist, song.ID)
		if song.IsFavorite == inFavorites {
			continue
		}
		if err := l.syncFavorite(song.ID, song.IsFavorite); err != nil {
			l.logger.Warn("failed to persist favorites repair", "id", song.ID, "error", err)
		}
		synced++
	}
	if synced > 0 {
		l.logger.Warn("resynced favorites with songs", "count", synced)
	}
}

// SaveSong creates a song from already formatted lyrics.
func (l *Library) SaveSong(title, artist, lyrics, originalLyrics string) (models.Song, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.saveSong(title, artist, lyrics, originalLyrics)
}

func (l *Library) saveSong(title, artist, lyrics, originalLyrics string) (models.Song, error) {
	title, artist = strings.TrimSpace(title), strings.TrimSpace(artist)
	if err := validateNames(title, artist); err != nil {
		return models.Song{}, err
	}

	song, err := l.songs.Create(title, artist, lyrics, originalLyrics)
	if err != nil {
		return song, err
	}

	l.logger.Info("song saved", "id", song.ID, "title", song.Title, "artist", song.Artist)
	return song, nil
}

// SaveRaw formats raw, fills a blank title or artist from the first line, and saves raw as the original lyrics.
func (l *Library) SaveRaw(raw, title, artist string) (models.Song, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.saveRaw(raw, title, artist)
}

func (l *Library) saveRaw(raw, title, artist string) (models.Song, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(artist) == "" {
		guessTitle, guessArtist := formatter.ParseTitleArtist(raw)
		if strings.TrimSpace(title) == "" {
			title = guessTitle
		}
		if strings.TrimSpace(artist) == "" {
			artist = guessArtist
		}
	}
	return l.saveSong(title, artist, formatter.Format(raw), raw)
}

// Song returns a song without recording a play.
func (l *Library) Song(id string) (models.Song, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.songs.Get(id)
}

// UpdateSong applies patch. A change to is_favorite also updates the Favorites playlist.
func (l *Library) UpdateSong(id string, patch models.SongPatch) (models.Song, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Song{}, fmt.Errorf("%w: title must not be empty", shared.ErrValidation)
		}
		patch.Title = &title
	}
	if patch.Artist != nil {
		artist := strings.TrimSpace(*patch.Artist)
		if artist == "" {
			return models.Song{}, fmt.Errorf("%w: artist must not be empty", shared.ErrValidation)
		}
		patch.Artist = &artist
	}

	current, err := l.songs.Get(id)
	if err != nil {
		return models.Song{}, err
	}

	favorite := patch.IsFavorite
	patch.IsFavorite = nil

	updated, err := l.songs.Update(id, patch)
	if err != nil {
		return updated, err
	}

	if favorite != nil && *favorite != current.IsFavorite {
		return l.setFavorite(updated, *favorite)
	}
	return updated, nil
}

// ToggleFavorite flips is_favorite and Favorites membership together.
//
// If either half cannot be saved, both are reverted and the error wraps [shared.ErrPersistence].
func (l *Library) ToggleFavorite(id string) (models.Song, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	song, err := l.songs.Get(id)
	if err != nil {
		return models.Song{}, err
	}
	return l.setFavorite(song, !song.IsFavorite)
}

func (l *Library) setFavorite(song models.Song, favorite bool) (models.Song, error) {
	updated, err := l.songs.Update(song.ID, models.SongPatch{IsFavorite: &favorite})
	if err != nil {
		l.revertFavorite(song)
		return song, fmt.Errorf("favorite not changed: %w", err)
	}

	if err := l.syncFavorite(song.ID, favorite); err != nil {
		l.revertFavorite(song)
		return song, fmt.Errorf("favorite not changed: %w", err)
	}

	l.logger.Info("favorite set", "id", song.ID, "favorite", favorite)
	return updated, nil
}

// revertFavorite restores the in-memory flag and membership of song. Write failures here are only logged.
func (l *Library) revertFavorite(song models.Song) {
	if _, err := l.songs.Update(song.ID, models.SongPatch{IsFavorite: &song.IsFavorite}); err != nil {
		l.logger.Error("failed to revert favorite flag", "id", song.ID, "error", err)
	}
	if err := l.syncFavorite(song.ID, song.IsFavorite); err != nil {
		l.logger.Error("failed to revert favorites membership", "id", song.ID, "error", err)
	}
}

func (l *Library) syncFavorite(id string, favorite bool) error {
	if favorite {
		_, err := l.playlists.AddSong(models.FavoritesPlaylist, id)
		return err
	}
	if !l.playlists.Contains(models.FavoritesPlaylist, id) {
		return nil
	}
	return l.playlists.RemoveSong(models.FavoritesPlaylist, id)
}

// DeleteSong removes the song and then its id from every playlist.
//
// The two steps are not a transaction: if the second fails the first stays applied and both errors are returned.
func (l *Library) DeleteSong(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed, err := l.songs.Delete(id)
	if !removed && err == nil {
		return fmt.Errorf("%w: song %s", shared.ErrNotFound, id)
	}

	touched, perr := l.playlists.RemoveEverywhere(id)
	if perr != nil {
		l.logger.Error("playlist cleanup incomplete", "id", id, "error", perr)
	}

	if err := errors.Join(err, perr); err != nil {
		return err
	}

	l.logger.Info("song deleted", "id", id, "playlists", touched)
	return nil
}

// LoadSong records a play and returns the song for display.
func (l *Library) LoadSong(id string) (models.Song, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.songs.RecordPlay(id)
}

// Clear deletes every song and resets playlists to an empty Favorites.
func (l *Library) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := errors.Join(l.songs.Clear(), l.playlists.Reset())
	if err == nil {
		l.logger.Info("library cleared")
	}
	return err
}

// Save retries writing both stores, for use after a reported persistence failure.
func (l *Library) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return errors.Join(l.songs.Save(), l.playlists.Save())
}

func validateNames(title, artist string) error {
	if title == "" {
		return fmt.Errorf("%w: title must not be empty", shared.ErrValidation)
	}
	if artist == "" {
		return fmt.Errorf("%w: artist must not be empty", shared.ErrValidation)
	}
	return nil
}
