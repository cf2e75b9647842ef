package repositories

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	th "github.com/desertthunder/lyrx/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func testSongs() []models.Song {
	played := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	return []models.Song{
		{
			ID:             "song-1",
			Title:          "Photograph",
			Artist:         "Ed Sheeran",
			Lyrics:         "line one\n\nline two",
			OriginalLyrics: "line one\n\n\nline two",
			CreatedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			LastPlayed:     &played,
			PlayCount:      2,
			IsFavorite:     true,
		},
		{
			ID:        "song-2",
			Title:     "Yesterday",
			Artist:    "The Beatles",
			CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestJSONStore(t *testing.T) {
	t.Run("missing file is empty", func(t *testing.T) {
		store := NewSongFileStore(filepath.Join(t.TempDir(), "songs.json"), shared.NewLogger(&bytes.Buffer{}))

		songs, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if songs == nil || len(songs) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", songs)
		}
	})

	t.Run("Save then Load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "songs.json")
		store := NewSongFileStore(path, shared.NewLogger(&bytes.Buffer{}))

		if err := store.Save(testSongs()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(loaded) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(loaded))
		}
		if loaded[0].Title != "Photograph" || !loaded[0].IsFavorite || loaded[0].PlayCount != 2 {
			t.Errorf("unexpected first song %+v", loaded[0])
		}
		if loaded[1].LastPlayed != nil {
			t.Errorf("expected nil last_played, got %v", loaded[1].LastPlayed)
		}

		content := th.MustReadFile(t, path)
		for _, key := range []string{`"original_lyrics"`, `"created_at"`, `"last_played"`, `"play_count"`, `"is_favorite"`} {
			if !strings.Contains(content, key) {
				t.Errorf("file missing key %s", key)
			}
		}
	})

	t.Run("Save writes world-readable files", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("file modes are not enforced on windows")
		}
		path := filepath.Join(t.TempDir(), "songs.json")
		store := NewSongFileStore(path, shared.NewLogger(&bytes.Buffer{}))
		if err := store.Save(testSongs()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm() != FileMode {
			t.Errorf("mode = %v, want %v", info.Mode().Perm(), FileMode)
		}
	})

	t.Run("Save leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		store := NewSongFileStore(filepath.Join(dir, "songs.json"), shared.NewLogger(&bytes.Buffer{}))
		if err := store.Save(testSongs()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only songs.json, got %d entries", len(entries))
		}
	})

	t.Run("corrupt file is backed up", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.json")
		th.MustWriteFile(t, path, "{not json")

		var logs bytes.Buffer
		store := NewSongFileStore(path, shared.NewLogger(&logs))

		songs, err := store.Load()
		if err != nil {
			t.Fatalf("Load should recover, got %v", err)
		}
		if len(songs) != 0 {
			t.Errorf("expected empty store, got %d songs", len(songs))
		}

		th.AssertFileMissing(t, path)
		th.AssertFileExists(t, path+BackupSuffix)
		if th.MustReadFile(t, path+BackupSuffix) != "{not json" {
			t.Error("backup should hold the original bytes")
		}
		if !strings.Contains(logs.String(), "unreadable") {
			t.Errorf("expected a warning, got %q", logs.String())
		}
	})

	t.Run("duplicate ids count as corrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.json")
		songs := testSongs()
		songs[1].ID = songs[0].ID
		data, _ := shared.MarshalJSON(songs, false)
		th.MustWriteFile(t, path, string(data))

		loaded, err := NewSongFileStore(path, shared.NewLogger(&bytes.Buffer{})).Load()
		if err != nil {
			t.Fatalf("Load should recover, got %v", err)
		}
		if len(loaded) != 0 {
			t.Errorf("expected empty store, got %d", len(loaded))
		}
		th.AssertFileExists(t, path+BackupSuffix)
	})

	t.Run("playlists file gains Favorites", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "playlists.json")
		th.MustWriteFile(t, path, `{"Road Trip": ["song-1"]}`)

		doc, err := NewPlaylistFileStore(path, shared.NewLogger(&bytes.Buffer{})).Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if _, ok := doc[models.FavoritesPlaylist]; !ok {
			t.Error("expected Favorites to be added")
		}
		if len(doc["Road Trip"]) != 1 {
			t.Errorf("unexpected Road Trip ids %v", doc["Road Trip"])
		}
	})

	t.Run("playlist with duplicate ids is corrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "playlists.json")
		th.MustWriteFile(t, path, `{"Favorites": ["a", "a"]}`)

		doc, err := NewPlaylistFileStore(path, shared.NewLogger(&bytes.Buffer{})).Load()
		if err != nil {
			t.Fatalf("Load should recover, got %v", err)
		}
		if len(doc) != 1 || len(doc[models.FavoritesPlaylist]) != 0 {
			t.Errorf("expected empty document, got %v", doc)
		}
		th.AssertFileExists(t, path+BackupSuffix)
	})

	t.Run("Save into unwritable location fails", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		th.MustWriteFile(t, blocker, "x")

		store := NewSongFileStore(filepath.Join(blocker, "songs.json"), shared.NewLogger(&bytes.Buffer{}))
		if err := store.Save(testSongs()); err == nil {
			t.Error("expected error when parent is a file")
		}
	})
}

func TestSQLiteStores(t *testing.T) {
	t.Run("songs round trip", func(t *testing.T) {
		store := NewSQLiteSongStore(setupTestDB(t), shared.NewLogger(&bytes.Buffer{}))

		empty, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(empty) != 0 {
			t.Fatalf("expected empty table, got %d", len(empty))
		}

		want := testSongs()
		if err := store.Save(want); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d songs, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i].ID != want[i].ID || got[i].Title != want[i].Title || got[i].Lyrics != want[i].Lyrics {
				t.Errorf("song %d = %+v, want %+v", i, got[i], want[i])
			}
			if !got[i].CreatedAt.Equal(want[i].CreatedAt) {
				t.Errorf("song %d created_at = %v, want %v", i, got[i].CreatedAt, want[i].CreatedAt)
			}
			if got[i].IsFavorite != want[i].IsFavorite || got[i].PlayCount != want[i].PlayCount {
				t.Errorf("song %d stats = %+v", i, got[i])
			}
		}
		if got[0].LastPlayed == nil || !got[0].LastPlayed.Equal(*want[0].LastPlayed) {
			t.Errorf("last_played = %v", got[0].LastPlayed)
		}
		if got[1].LastPlayed != nil {
			t.Errorf("expected nil last_played, got %v", got[1].LastPlayed)
		}
	})

	t.Run("songs Save replaces rows", func(t *testing.T) {
		store := NewSQLiteSongStore(setupTestDB(t), shared.NewLogger(&bytes.Buffer{}))
		if err := store.Save(testSongs()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := store.Save(testSongs()[1:]); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != "song-2" {
			t.Errorf("expected only song-2, got %+v", got)
		}
	})

	t.Run("playlists round trip", func(t *testing.T) {
		store := NewSQLitePlaylistStore(setupTestDB(t), shared.NewLogger(&bytes.Buffer{}))

		doc, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if _, ok := doc[models.FavoritesPlaylist]; !ok {
			t.Error("empty database should still yield Favorites")
		}

		want := models.Playlists{
			models.FavoritesPlaylist: {"song-1"},
			"Road Trip":              {"song-2", "song-1"},
			"Empty":                  {},
		}
		if err := store.Save(want); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 playlists, got %v", got)
		}
		if strings.Join(got["Road Trip"], ",") != "song-2,song-1" {
			t.Errorf("order not preserved: %v", got["Road Trip"])
		}
		if got["Empty"] == nil || len(got["Empty"]) != 0 {
			t.Errorf("expected empty playlist, got %v", got["Empty"])
		}
	})

	t.Run("invalid song rows are backed up and reset", func(t *testing.T) {
		db := setupTestDB(t)
		if _, err := db.Exec(
			"INSERT INTO songs (id, position, title, artist, created_at) VALUES ('', 0, 'Ghost', 'Nobody', ?)",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		var logs bytes.Buffer
		songs, err := NewSQLiteSongStore(db, shared.NewLogger(&logs)).Load()
		if err != nil {
			t.Fatalf("Load should recover, got %v", err)
		}
		if len(songs) != 0 {
			t.Errorf("expected empty store, got %d songs", len(songs))
		}
		if n := countRows(t, db, "songs"); n != 0 {
			t.Errorf("songs table should be empty, has %d rows", n)
		}
		if n := countRows(t, db, "songs"+BackupTableSuffix); n != 1 {
			t.Errorf("backup table should hold the bad row, has %d rows", n)
		}
		if !strings.Contains(logs.String(), "invalid") {
			t.Errorf("expected a warning, got %q", logs.String())
		}
	})

	t.Run("orphaned playlist rows are backed up and reset", func(t *testing.T) {
		db := setupTestDB(t)
		if _, err := db.Exec("INSERT INTO playlists (name) VALUES ('Road Trip')"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if _, err := db.Exec("INSERT INTO playlist_songs (playlist_name, song_id, position) VALUES ('Ghost', 'song-1', 0)"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		doc, err := NewSQLitePlaylistStore(db, shared.NewLogger(&bytes.Buffer{})).Load()
		if err != nil {
			t.Fatalf("Load should recover, got %v", err)
		}
		if len(doc) != 1 || len(doc[models.FavoritesPlaylist]) != 0 {
			t.Errorf("expected only an empty Favorites, got %v", doc)
		}
		if n := countRows(t, db, "playlists"); n != 0 {
			t.Errorf("playlists table should be empty, has %d rows", n)
		}
		if n := countRows(t, db, "playlists"+BackupTableSuffix); n != 1 {
			t.Errorf("playlists backup should have 1 row, has %d", n)
		}
		if n := countRows(t, db, "playlist_songs"+BackupTableSuffix); n != 1 {
			t.Errorf("playlist_songs backup should have 1 row, has %d", n)
		}
	})
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s failed: %v", table, err)
	}
	return n
}
