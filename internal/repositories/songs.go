package repositories

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// SongRepository owns the saved songs.
//
// Songs keep insertion order. Ids handed out by Create are remembered for the life of the repository and never issued twice.
type SongRepository struct {
	store  Store[[]models.Song]
	logger *log.Logger
	songs  []models.Song
	issued map[string]struct{}
	now    func() time.Time
	newID  func() string
}

// SongOption configures a [SongRepository].
type SongOption func(*SongRepository)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) SongOption {
	return func(r *SongRepository) { r.now = now }
}

// WithIDGenerator replaces [shared.GenerateID].
func WithIDGenerator(gen func() string) SongOption {
	return func(r *SongRepository) { r.newID = gen }
}

// NewSongRepository loads the songs document from store.
func NewSongRepository(store Store[[]models.Song], logger *log.Logger, opts ...SongOption) (*SongRepository, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	r := &SongRepository{
		store:  store,
		logger: logger,
		issued: make(map[string]struct{}),
		now:    time.Now,
		newID:  shared.GenerateID,
	}
	for _, opt := range opts {
		opt(r)
	}

	songs, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load songs: %v", shared.ErrPersistence, err)
	}
	r.songs = make([]models.Song, 0, len(songs))
	for _, song := range songs {
		r.songs = append(r.songs, song.Clone())
		r.issued[song.ID] = struct{}{}
	}

	logger.Debug("songs loaded", "count", len(songs))
	return r, nil
}

// Create adds a song with a fresh id and zeroed play statistics.
//
// The returned song is valid even when the error wraps [shared.ErrPersistence]: the song is kept in memory.
func (r *SongRepository) Create(title, artist, lyrics, originalLyrics string) (models.Song, error) {
	song := models.Song{
		ID:             r.nextID(),
		Title:          title,
		Artist:         artist,
		Lyrics:         lyrics,
		OriginalLyrics: originalLyrics,
		CreatedAt:      r.now(),
	}

	r.songs = append(r.songs, song)
	return song.Clone(), r.persist("create", song.ID)
}

func (r *SongRepository) nextID() string {
	for {
		id := r.newID()
		if _, used := r.issued[id]; used {
			continue
		}
		r.issued[id] = struct{}{}
		return id
	}
}

// Get returns the song with id.
func (r *SongRepository) Get(id string) (models.Song, error) {
	i := r.indexOf(id)
	if i < 0 {
		return models.Song{}, notFound(id)
	}
	return r.songs[i].Clone(), nil
}

// Update applies patch in place. id and created_at never change.
func (r *SongRepository) Update(id string, patch models.SongPatch) (models.Song, error) {
	i := r.indexOf(id)
	if i < 0 {
		return models.Song{}, notFound(id)
	}
	if patch.Empty() {
		return r.songs[i].Clone(), nil
	}

	patch.Apply(&r.songs[i])
	return r.songs[i].Clone(), r.persist("update", id)
}

// Delete removes the song. removed is false when id was not present.
func (r *SongRepository) Delete(id string) (bool, error) {
	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}

	r.songs = append(r.songs[:i], r.songs[i+1:]...)
	return true, r.persist("delete", id)
}

// RecordPlay sets last_played to now and increments play_count.
func (r *SongRepository) RecordPlay(id string) (models.Song, error) {
	i := r.indexOf(id)
	if i < 0 {
		return models.Song{}, notFound(id)
	}

	now := r.now()
	r.songs[i].LastPlayed = &now
	r.songs[i].PlayCount++
	return r.songs[i].Clone(), r.persist("record play", id)
}

// List returns copies of every song in insertion order.
func (r *SongRepository) List() []models.Song {
	out := make([]models.Song, len(r.songs))
	for i, song := range r.songs {
		out[i] = song.Clone()
	}
	return out
}

// Has reports whether id exists.
func (r *SongRepository) Has(id string) bool {
	return r.indexOf(id) >= 0
}

// Len is the number of songs.
func (r *SongRepository) Len() int {
	return len(r.songs)
}

// Clear removes every song. Issued ids stay reserved.
func (r *SongRepository) Clear() error {
	r.songs = []models.Song{}
	return r.persist("clear", "")
}

// Save retries persisting the current in-memory state.
func (r *SongRepository) Save() error {
	return r.persist("save", "")
}

func (r *SongRepository) indexOf(id string) int {
	for i := range r.songs {
		if r.songs[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *SongRepository) persist(op, id string) error {
	if err := r.store.Save(r.List()); err != nil {
		r.logger.Error("failed to save songs", "op", op, "id", id, "error", err)
		return fmt.Errorf("%w: songs %s: %v", shared.ErrPersistence, op, err)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: song %s", shared.ErrNotFound, id)
}
