package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// BackupSuffix is appended to a store file that could not be decoded.
const BackupSuffix = ".backup"

// FileMode is the permission of saved store files.
const FileMode os.FileMode = 0644

// Store loads and saves one whole document.
type Store[T any] interface {
	Load() (T, error)
	Save(doc T) error
}

// JSONStore persists a document as a single JSON file.
//
// Writes go to a temp file in the same directory and are renamed into place, so a crash never leaves a half-written file.
// A file that fails to decode or validate is renamed with [BackupSuffix] and Load returns an empty document.
type JSONStore[T any] struct {
	path     string
	logger   *log.Logger
	empty    func() T
	validate func(T) (T, error)
}

// NewJSONStore creates a [JSONStore]. validate may normalize the decoded document; a non-nil error marks the file corrupt.
func NewJSONStore[T any](path string, logger *log.Logger, empty func() T, validate func(T) (T, error)) *JSONStore[T] {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &JSONStore[T]{path: path, logger: logger, empty: empty, validate: validate}
}

// NewSongFileStore stores songs as a JSON array.
func NewSongFileStore(path string, logger *log.Logger) *JSONStore[[]models.Song] {
	return NewJSONStore(path, logger, func() []models.Song { return []models.Song{} }, validateSongs)
}

// NewPlaylistFileStore stores playlists as a JSON object of name → ids.
func NewPlaylistFileStore(path string, logger *log.Logger) *JSONStore[models.Playlists] {
	return NewJSONStore(path, logger, models.NewPlaylists, func(p models.Playlists) (models.Playlists, error) {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return p.Normalize(), nil
	})
}

// Path returns the file location.
func (s *JSONStore[T]) Path() string {
	return s.path
}

// Load reads the document. A missing file is an empty document.
func (s *JSONStore[T]) Load() (T, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.empty(), nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	doc, err := s.decode(data)
	if err == nil {
		return doc, nil
	}

	backup := s.path + BackupSuffix
	if rerr := os.Rename(s.path, backup); rerr != nil {
		var zero T
		return zero, fmt.Errorf("failed to back up corrupt file %s: %w", s.path, rerr)
	}

	s.logger.Warn("store file was unreadable, starting empty", "path", s.path, "backup", backup, "error", err)
	return s.empty(), nil
}

func (s *JSONStore[T]) decode(data []byte) (T, error) {
	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to decode: %w", err)
	}
	if s.validate == nil {
		return doc, nil
	}
	return s.validate(doc)
}

// Save writes the document atomically.
func (s *JSONStore[T]) Save(doc T) error {
	data, err := shared.MarshalJSON(doc, true)
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(FileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	s.logger.Debug("store saved", "path", s.path, "bytes", len(data))
	return nil
}

// validateSongs rejects invalid records and duplicate ids.
func validateSongs(songs []models.Song) ([]models.Song, error) {
	if songs == nil {
		return []models.Song{}, nil
	}
	seen := make(map[string]struct{}, len(songs))
	for _, song := range songs {
		if err := song.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[song.ID]; dup {
			return nil, fmt.Errorf("duplicate song id %s", song.ID)
		}
		seen[song.ID] = struct{}{}
	}
	return songs, nil
}
