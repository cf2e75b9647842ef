package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/library"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Library is the facade surface the API serves.
type Library interface {
	Songs(q library.Query) ([]models.Song, error)
	Song(id string) (models.Song, error)
	SaveSong(title, artist, lyrics, originalLyrics string) (models.Song, error)
	SaveRaw(raw, title, artist string) (models.Song, error)
	UpdateSong(id string, patch models.SongPatch) (models.Song, error)
	DeleteSong(id string) error
	LoadSong(id string) (models.Song, error)
	ToggleFavorite(id string) (models.Song, error)
	Playlists() []models.Playlist
	PlaylistSongs(name string) ([]models.Song, error)
	CreatePlaylist(name string) error
	DeletePlaylist(name string) error
	AddToPlaylist(name, id string) (bool, error)
	RemoveFromPlaylist(name, id string) error
	Stats() library.Stats
}

// API serves the library over JSON.
type API struct {
	lib    Library
	logger *log.Logger
	mux    *http.ServeMux
}

// SongRequest is the body of POST /songs.
//
// With Raw set, Lyrics is formatted and a blank title or artist is guessed from the first line.
type SongRequest struct {
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	Lyrics         string `json:"lyrics"`
	OriginalLyrics string `json:"original_lyrics,omitempty"`
	Raw            bool   `json:"raw,omitempty"`
}

// PlaylistRequest is the body of POST /playlists.
type PlaylistRequest struct {
	Name string `json:"name"`
}

// FormatRequest is the body of POST /format.
type FormatRequest struct {
	Text          string `json:"text"`
	IndentChorus  bool   `json:"indent_chorus,omitempty"`
	SpaceSections bool   `json:"space_sections,omitempty"`
}

// FormatResponse carries formatted text and the guessed names.
type FormatResponse struct {
	Text   string `json:"text"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// AddedResponse reports whether POST /playlists/{name}/songs/{id} changed anything.
type AddedResponse struct {
	Added bool `json:"added"`
}

// NewAPI creates the library [Handler].
func NewAPI(lib Library, logger *log.Logger) *API {
	a := &API{lib: lib, logger: logger, mux: http.NewServeMux()}

	a.mux.HandleFunc("GET /songs", a.listSongs)
	a.mux.HandleFunc("POST /songs", a.createSong)
	a.mux.HandleFunc("GET /songs/{id}", a.getSong)
	a.mux.HandleFunc("PATCH /songs/{id}", a.updateSong)
	a.mux.HandleFunc("DELETE /songs/{id}", a.deleteSong)
	a.mux.HandleFunc("POST /songs/{id}/play", a.playSong)
	a.mux.HandleFunc("POST /songs/{id}/favorite", a.toggleFavorite)
	a.mux.HandleFunc("GET /playlists", a.listPlaylists)
	a.mux.HandleFunc("POST /playlists", a.createPlaylist)
	a.mux.HandleFunc("GET /playlists/{name}", a.playlistSongs)
	a.mux.HandleFunc("DELETE /playlists/{name}", a.deletePlaylist)
	a.mux.HandleFunc("POST /playlists/{name}/songs/{id}", a.addToPlaylist)
	a.mux.HandleFunc("DELETE /playlists/{name}/songs/{id}", a.removeFromPlaylist)
	a.mux.HandleFunc("POST /format", a.format)
	a.mux.HandleFunc("GET /stats", a.stats)
	return a
}

// Routes returns the HTTP routes this handler serves.
func (a *API) Routes() []string {
	return []string{
		"GET /songs",
		"POST /songs",
		"GET /songs/{id}",
		"PATCH /songs/{id}",
		"DELETE /songs/{id}",
		"POST /songs/{id}/play",
		"POST /songs/{id}/favorite",
		"GET /playlists",
		"POST /playlists",
		"GET /playlists/{name}",
		"DELETE /playlists/{name}",
		"POST /playlists/{name}/songs/{id}",
		"DELETE /playlists/{name}/songs/{id}",
		"POST /format",
		"GET /stats",
	}
}

// ServeHTTP dispatches to the route handlers.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) listSongs(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	songs, err := a.lib.Songs(q)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func parseQuery(r *http.Request) (library.Query, error) {
	values := r.URL.Query()
	q := library.Query{
		Search:   values.Get("search"),
		Artist:   values.Get("artist"),
		Playlist: values.Get("playlist"),
	}

	sort, err := library.ParseSortKey(values.Get("sort"))
	if err != nil {
		return q, err
	}
	q.Sort = sort

	if v := values.Get("favorites"); v != "" {
		if q.FavoritesOnly, err = strconv.ParseBool(v); err != nil {
			return q, fmt.Errorf("%w: favorites must be a boolean", shared.ErrInvalidArgument)
		}
	}
	if v := values.Get("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil || q.Limit < 0 {
			return q, fmt.Errorf("%w: limit must be a non-negative integer", shared.ErrInvalidArgument)
		}
	}
	return q, nil
}

func (a *API) createSong(w http.ResponseWriter, r *http.Request) {
	var req SongRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	var (
		song models.Song
		err  error
	)
	if req.Raw {
		song, err = a.lib.SaveRaw(req.Lyrics, req.Title, req.Artist)
	} else {
		original := req.OriginalLyrics
		if original == "" {
			original = req.Lyrics
		}
		song, err = a.lib.SaveSong(req.Title, req.Artist, req.Lyrics, original)
	}
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

func (a *API) getSong(w http.ResponseWriter, r *http.Request) {
	song, err := a.lib.Song(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (a *API) updateSong(w http.ResponseWriter, r *http.Request) {
	var patch models.SongPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		a.writeError(w, err)
		return
	}

	song, err := a.lib.UpdateSong(r.PathValue("id"), patch)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (a *API) deleteSong(w http.ResponseWriter, r *http.Request) {
	if err := a.lib.DeleteSong(r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) playSong(w http.ResponseWriter, r *http.Request) {
	song, err := a.lib.LoadSong(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (a *API) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	song, err := a.lib.ToggleFavorite(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (a *API) listPlaylists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.lib.Playlists())
}

func (a *API) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var req PlaylistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	if err := a.lib.CreatePlaylist(req.Name); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.Playlist{Name: req.Name, SongIDs: []string{}})
}

func (a *API) playlistSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := a.lib.PlaylistSongs(r.PathValue("name"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (a *API) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := a.lib.DeletePlaylist(r.PathValue("name")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) addToPlaylist(w http.ResponseWriter, r *http.Request) {
	added, err := a.lib.AddToPlaylist(r.PathValue("name"), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AddedResponse{Added: added})
}

func (a *API) removeFromPlaylist(w http.ResponseWriter, r *http.Request) {
	if err := a.lib.RemoveFromPlaylist(r.PathValue("name"), r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) format(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	title, artist := formatter.ParseTitleArtist(req.Text)
	writeJSON(w, http.StatusOK, FormatResponse{
		Text:   formatter.FormatWith(req.Text, formatter.Options{IndentChorus: req.IndentChorus, SpaceSections: req.SpaceSections}),
		Title:  title,
		Artist: artist,
	})
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.lib.Stats())
}

// StatusFor maps a library error kind to an HTTP status code.
func StatusFor(kind library.Kind) int {
	switch kind {
	case library.KindOK:
		return http.StatusOK
	case library.KindValidation:
		return http.StatusBadRequest
	case library.KindNotFound:
		return http.StatusNotFound
	case library.KindAlreadyExists:
		return http.StatusConflict
	case library.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	result := library.Outcome(err)
	status := StatusFor(result.Kind)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "kind", result.Kind, "error", err)
	}
	writeJSON(w, status, result)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", shared.ErrInvalidArgument, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
