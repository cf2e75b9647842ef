package repositories

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// PlaylistIndex owns the playlists document. Names are case-sensitive.
//
// The index does not check that ids refer to existing songs; the library does that.
type PlaylistIndex struct {
	store  Store[models.Playlists]
	logger *log.Logger
	doc    models.Playlists
}

// NewPlaylistIndex loads the playlists document from store.
func NewPlaylistIndex(store Store[models.Playlists], logger *log.Logger) (*PlaylistIndex, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	doc, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load playlists: %v", shared.ErrPersistence, err)
	}

	logger.Debug("playlists loaded", "count", len(doc))
	return &PlaylistIndex{store: store, logger: logger, doc: doc.Clone().Normalize()}, nil
}

// CreatePlaylist adds an empty playlist.
func (p *PlaylistIndex) CreatePlaylist(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: playlist name must not be empty", shared.ErrValidation)
	}
	if _, ok := p.doc[name]; ok {
		return fmt.Errorf("%w: playlist %q", shared.ErrAlreadyExists, name)
	}

	p.doc[name] = []string{}
	return p.persist("create playlist", name)
}

// DeletePlaylist removes a playlist. Favorites cannot be deleted.
func (p *PlaylistIndex) DeletePlaylist(name string) error {
	if name == models.FavoritesPlaylist {
		return fmt.Errorf("%w: the %s playlist cannot be deleted", shared.ErrForbidden, models.FavoritesPlaylist)
	}
	if _, ok := p.doc[name]; !ok {
		return playlistNotFound(name)
	}

	delete(p.doc, name)
	return p.persist("delete playlist", name)
}

// AddSong appends id to the playlist. Adding an id already present is a no-op and reports added=false.
func (p *PlaylistIndex) AddSong(name, id string) (bool, error) {
	ids, ok := p.doc[name]
	if !ok {
		return false, playlistNotFound(name)
	}
	if slices.Contains(ids, id) {
		return false, nil
	}

	p.doc[name] = append(ids, id)
	return true, p.persist("add song", name)
}

// RemoveSong drops id from the playlist.
func (p *PlaylistIndex) RemoveSong(name, id string) error {
	ids, ok := p.doc[name]
	if !ok {
		return playlistNotFound(name)
	}
	i := slices.Index(ids, id)
	if i < 0 {
		return fmt.Errorf("%w: song %s is not in playlist %q", shared.ErrNotFound, id, name)
	}

	p.doc[name] = slices.Delete(ids, i, i+1)
	return p.persist("remove song", name)
}

// RemoveEverywhere drops id from every playlist and returns the names it was removed from.
func (p *PlaylistIndex) RemoveEverywhere(id string) ([]string, error) {
	var touched []string
	for _, name := range p.doc.Names() {
		ids := p.doc[name]
		if i := slices.Index(ids, id); i >= 0 {
			p.doc[name] = slices.Delete(ids, i, i+1)
			touched = append(touched, name)
		}
	}
	if len(touched) == 0 {
		return nil, nil
	}
	return touched, p.persist("remove everywhere", id)
}

// Retain keeps only ids for which keep returns true and returns how many entries were dropped.
func (p *PlaylistIndex) Retain(keep func(id string) bool) (int, error) {
	dropped := 0
	for name, ids := range p.doc {
		kept := ids[:0]
		for _, id := range ids {
			if keep(id) {
				kept = append(kept, id)
			} else {
				dropped++
			}
		}
		p.doc[name] = kept
	}
	if dropped == 0 {
		return 0, nil
	}
	return dropped, p.persist("retain", "")
}

// Playlists returns a copy of the document.
func (p *PlaylistIndex) Playlists() models.Playlists {
	return p.doc.Clone()
}

// Get returns the ordered ids of one playlist.
func (p *PlaylistIndex) Get(name string) ([]string, error) {
	ids, ok := p.doc[name]
	if !ok {
		return nil, playlistNotFound(name)
	}
	return slices.Clone(ids), nil
}

// Contains reports whether the playlist exists and lists id.
func (p *PlaylistIndex) Contains(name, id string) bool {
	return slices.Contains(p.doc[name], id)
}

// Exists reports whether a playlist is present.
func (p *PlaylistIndex) Exists(name string) bool {
	_, ok := p.doc[name]
	return ok
}

// Reset drops every playlist and recreates an empty Favorites.
func (p *PlaylistIndex) Reset() error {
	p.doc = models.NewPlaylists()
	return p.persist("reset", "")
}

// Save retries persisting the current in-memory state.
func (p *PlaylistIndex) Save() error {
	return p.persist("save", "")
}

func (p *PlaylistIndex) persist(op, name string) error {
	if err := p.store.Save(p.doc.Clone()); err != nil {
		p.logger.Error("failed to save playlists", "op", op, "target", name, "error", err)
		return fmt.Errorf("%w: playlists %s: %v", shared.ErrPersistence, op, err)
	}
	return nil
}

func playlistNotFound(name string) error {
	return fmt.Errorf("%w: playlist %q", shared.ErrNotFound, name)
}
