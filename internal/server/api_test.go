package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/lyrx/internal/library"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	th "github.com/desertthunder/lyrx/internal/testing"
)

type testServer struct {
	lib       *library.Library
	songs     *th.FlakyStore[[]models.Song]
	playlists *th.FlakyStore[models.Playlists]
	handler   http.Handler
	logs      *bytes.Buffer
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	ts := testServer{
		songs:     th.NewFlakyStore([]models.Song{}),
		playlists: th.NewFlakyStore(models.NewPlaylists()),
		logs:      &bytes.Buffer{},
	}
	logger := shared.NewLogger(ts.logs)

	lib, err := library.New(ts.songs, ts.playlists, library.Options{Logger: logger})
	require.NoError(t, err)
	ts.lib = lib
	ts.handler = New(lib, logger)
	return ts
}

func (ts testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts testServer) createSong(t *testing.T, title, artist string) models.Song {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/songs", SongRequest{Title: title, Artist: artist, Lyrics: "la la"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Song](t, rec)
}

func TestSongRoutes(t *testing.T) {
	t.Run("create and get", func(t *testing.T) {
		ts := newTestServer(t)
		song := ts.createSong(t, "Hello", "Adele")

		assert.NotEmpty(t, song.ID)
		assert.Equal(t, "la la", song.OriginalLyrics)
		assert.Equal(t, "application/json", ts.do(t, http.MethodGet, "/songs/"+song.ID, nil).Header().Get("Content-Type"))

		got := decode[models.Song](t, ts.do(t, http.MethodGet, "/songs/"+song.ID, nil))
		assert.Equal(t, song.ID, got.ID)
		assert.Equal(t, 0, got.PlayCount)
	})

	t.Run("create raw guesses names and formats", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.do(t, http.MethodPost, "/songs", SongRequest{
			Lyrics: "Photograph - Ed Sheeran\n\n\n\nLoving can hurt  \n",
			Raw:    true,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		song := decode[models.Song](t, rec)
		assert.Equal(t, "Ed Sheeran", song.Title)
		assert.Equal(t, "Photograph", song.Artist)
		assert.Equal(t, "Photograph - Ed Sheeran\n\nLoving can hurt", song.Lyrics)
	})

	t.Run("list with filters", func(t *testing.T) {
		ts := newTestServer(t)
		ts.createSong(t, "Hello", "Adele")
		ts.createSong(t, "Yesterday", "The Beatles")

		all := decode[[]models.Song](t, ts.do(t, http.MethodGet, "/songs?sort=title", nil))
		require.Len(t, all, 2)
		assert.Equal(t, "Hello", all[0].Title)

		found := decode[[]models.Song](t, ts.do(t, http.MethodGet, "/songs?search=beat", nil))
		require.Len(t, found, 1)
		assert.Equal(t, "Yesterday", found[0].Title)

		limited := decode[[]models.Song](t, ts.do(t, http.MethodGet, "/songs?limit=1", nil))
		assert.Len(t, limited, 1)
	})

	t.Run("bad query parameters", func(t *testing.T) {
		ts := newTestServer(t)
		for _, path := range []string{"/songs?sort=size", "/songs?favorites=maybe", "/songs?limit=-1"} {
			rec := ts.do(t, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, path)
			assert.Equal(t, library.KindValidation, decode[library.Result](t, rec).Kind)
		}
	})

	t.Run("validation errors", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodPost, "/songs", SongRequest{Title: "", Artist: "Adele"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = ts.do(t, http.MethodPost, "/songs", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = ts.do(t, http.MethodPost, "/songs", `{"title":"a","artist":"b","extra":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		ts := newTestServer(t)
		song := ts.createSong(t, "Helo", "Adele")

		rec := ts.do(t, http.MethodPatch, "/songs/"+song.ID, `{"title":"Hello","is_favorite":true}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		updated := decode[models.Song](t, rec)
		assert.Equal(t, "Hello", updated.Title)
		assert.True(t, updated.IsFavorite)
		assert.Contains(t, ts.playlists.Data()[models.FavoritesPlaylist], song.ID)
	})

	t.Run("delete cascades", func(t *testing.T) {
		ts := newTestServer(t)
		song := ts.createSong(t, "Hello", "Adele")
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/songs/"+song.ID+"/favorite", nil).Code)

		rec := ts.do(t, http.MethodDelete, "/songs/"+song.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.NotContains(t, ts.playlists.Data()[models.FavoritesPlaylist], song.ID)

		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/songs/"+song.ID, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/songs/"+song.ID, nil).Code)
	})

	t.Run("play records a play", func(t *testing.T) {
		ts := newTestServer(t)
		song := ts.createSong(t, "Hello", "Adele")

		played := decode[models.Song](t, ts.do(t, http.MethodPost, "/songs/"+song.ID+"/play", nil))
		assert.Equal(t, 1, played.PlayCount)
		assert.NotNil(t, played.LastPlayed)
	})

	t.Run("double favorite toggle restores state", func(t *testing.T) {
		ts := newTestServer(t)
		song := ts.createSong(t, "Hello", "Adele")

		first := decode[models.Song](t, ts.do(t, http.MethodPost, "/songs/"+song.ID+"/favorite", nil))
		second := decode[models.Song](t, ts.do(t, http.MethodPost, "/songs/"+song.ID+"/favorite", nil))
		assert.True(t, first.IsFavorite)
		assert.False(t, second.IsFavorite)
		assert.Empty(t, ts.playlists.Data()[models.FavoritesPlaylist])
	})

	t.Run("persistence failure is a 500", func(t *testing.T) {
		ts := newTestServer(t)
		ts.songs.FailSaves(true)

		rec := ts.do(t, http.MethodPost, "/songs", SongRequest{Title: "Hello", Artist: "Adele", Lyrics: "x"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, library.KindPersistence, decode[library.Result](t, rec).Kind)
		assert.Contains(t, ts.logs.String(), "request failed")
	})
}

func TestPlaylistRoutes(t *testing.T) {
	t.Run("create, add, list, remove", func(t *testing.T) {
		ts := newTestServer(t)
		song := ts.createSong(t, "Hello", "Adele")

		rec := ts.do(t, http.MethodPost, "/playlists", PlaylistRequest{Name: "Road Trip"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		added := decode[AddedResponse](t, ts.do(t, http.MethodPost, "/playlists/Road%20Trip/songs/"+song.ID, nil))
		assert.True(t, added.Added)
		again := decode[AddedResponse](t, ts.do(t, http.MethodPost, "/playlists/Road%20Trip/songs/"+song.ID, nil))
		assert.False(t, again.Added)

		songs := decode[[]models.Song](t, ts.do(t, http.MethodGet, "/playlists/Road%20Trip", nil))
		require.Len(t, songs, 1)
		assert.Equal(t, song.ID, songs[0].ID)

		playlists := decode[[]models.Playlist](t, ts.do(t, http.MethodGet, "/playlists", nil))
		assert.Len(t, playlists, 2)

		rec = ts.do(t, http.MethodDelete, "/playlists/Road%20Trip/songs/"+song.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = ts.do(t, http.MethodDelete, "/playlists/Road%20Trip/songs/"+song.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		ts := newTestServer(t)
		require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/playlists", PlaylistRequest{Name: "Road Trip"}).Code)

		rec := ts.do(t, http.MethodPost, "/playlists", PlaylistRequest{Name: "Road Trip"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, library.KindAlreadyExists, decode[library.Result](t, rec).Kind)
	})

	t.Run("favorites cannot be deleted", func(t *testing.T) {
		ts := newTestServer(t)
		before := ts.playlists.Saves()

		rec := ts.do(t, http.MethodDelete, "/playlists/Favorites", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, before, ts.playlists.Saves())
		assert.Contains(t, ts.playlists.Data(), models.FavoritesPlaylist)
	})

	t.Run("delete playlist", func(t *testing.T) {
		ts := newTestServer(t)
		require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/playlists", PlaylistRequest{Name: "Gym"}).Code)

		assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/playlists/Gym", nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/playlists/Gym", nil).Code)
	})

	t.Run("unknown song or playlist", func(t *testing.T) {
		ts := newTestServer(t)
		song := ts.createSong(t, "Hello", "Adele")

		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/playlists/Nope/songs/"+song.ID, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/playlists/Favorites/songs/missing", nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/playlists/Nope", nil).Code)
	})
}

func TestFormatRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/format", FormatRequest{Text: "Yesterday by The Beatles\n\n\n\nYesterday  "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[FormatResponse](t, rec)
	assert.Equal(t, "Yesterday by The Beatles\n\nYesterday", res.Text)
	assert.Equal(t, "Yesterday", res.Title)
	assert.Equal(t, "The Beatles", res.Artist)
}

func TestStatsRoute(t *testing.T) {
	ts := newTestServer(t)
	ts.createSong(t, "Hello", "Adele")

	stats := decode[library.Stats](t, ts.do(t, http.MethodGet, "/stats", nil))
	assert.Equal(t, 1, stats.Songs)
	assert.Equal(t, 1, stats.Playlists)
}

func TestStatusFor(t *testing.T) {
	tests := map[library.Kind]int{
		library.KindOK:            http.StatusOK,
		library.KindValidation:    http.StatusBadRequest,
		library.KindNotFound:      http.StatusNotFound,
		library.KindAlreadyExists: http.StatusConflict,
		library.KindForbidden:     http.StatusForbidden,
		library.KindPersistence:   http.StatusInternalServerError,
		library.KindInternal:      http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, StatusFor(kind), kind)
	}
}

func TestRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, []string{"first", "second", "handler"}, order)
	})

	t.Run("method not allowed", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("path values", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/echo/{word}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, r.PathValue("word"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo/hi", nil))
		assert.Equal(t, "hi", rec.Body.String())
	})

	t.Run("logging and recovery", func(t *testing.T) {
		logs := &bytes.Buffer{}
		router := NewBasicRouter()
		router.Use(Logging(shared.NewLogger(logs)))
		router.Handle(http.MethodGet, "/teapot", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Contains(t, logs.String(), "status=418")
	})
}

func TestServe(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", ts.handler, shared.NewLogger(ts.logs), ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("Serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/stats")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
