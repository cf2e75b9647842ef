package repositories

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// BackupTableSuffix names the copy of a table whose rows failed validation.
const BackupTableSuffix = "_backup"

// resetTables copies each table to its backup table and empties it, in one transaction.
func resetTables(db *sql.DB, tables ...string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		backup := table + BackupTableSuffix
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + backup); err != nil {
			return fmt.Errorf("failed to drop %s: %w", backup, err)
		}
		if _, err := tx.Exec("CREATE TABLE " + backup + " AS SELECT * FROM " + table); err != nil {
			return fmt.Errorf("failed to back up %s: %w", table, err)
		}
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// SQLiteSongStore implements Store[[]models.Song] on the songs table.
//
// Save replaces the table contents in one transaction; position keeps the document order.
type SQLiteSongStore struct {
	db     *sql.DB
	logger *log.Logger
}

// NewSQLiteSongStore creates a new SQLiteSongStore with the given database connection
func NewSQLiteSongStore(db *sql.DB, logger *log.Logger) *SQLiteSongStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SQLiteSongStore{db: db, logger: logger}
}

// Load reads every song ordered by position.
//
// Rows that fail validation are copied to songs_backup and the table starts empty.
func (s *SQLiteSongStore) Load() ([]models.Song, error) {
	query := `
		SELECT id, title, artist, lyrics, original_lyrics, created_at, last_played, play_count, is_favorite
		FROM songs
		ORDER BY position
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		var song models.Song
		var lastPlayed sql.NullTime

		if err := rows.Scan(
			&song.ID,
			&song.Title,
			&song.Artist,
			&song.Lyrics,
			&song.OriginalLyrics,
			&song.CreatedAt,
			&lastPlayed,
			&song.PlayCount,
			&song.IsFavorite,
		); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}

		if lastPlayed.Valid {
			t := lastPlayed.Time
			song.LastPlayed = &t
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating songs: %w", err)
	}

	valid, err := validateSongs(songs)
	if err == nil {
		return valid, nil
	}

	if rerr := resetTables(s.db, "songs"); rerr != nil {
		return nil, fmt.Errorf("failed to reset invalid songs: %w", rerr)
	}
	s.logger.Warn("songs table was invalid, starting empty", "backup", "songs"+BackupTableSuffix, "error", err)
	return []models.Song{}, nil
}

// Save replaces all rows with songs.
func (s *SQLiteSongStore) Save(songs []models.Song) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM songs"); err != nil {
		return fmt.Errorf("failed to clear songs: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO songs (id, position, title, artist, lyrics, original_lyrics, created_at, last_played, play_count, is_favorite)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, song := range songs {
		var lastPlayed sql.NullTime
		if song.LastPlayed != nil {
			lastPlayed = sql.NullTime{Time: *song.LastPlayed, Valid: true}
		}

		if _, err := stmt.Exec(
			song.ID,
			i,
			song.Title,
			song.Artist,
			song.Lyrics,
			song.OriginalLyrics,
			song.CreatedAt,
			lastPlayed,
			song.PlayCount,
			song.IsFavorite,
		); err != nil {
			return fmt.Errorf("failed to insert song %s: %w", song.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit songs: %w", err)
	}
	return nil
}

// SQLitePlaylistStore implements Store[models.Playlists] on the playlists and playlist_songs tables.
type SQLitePlaylistStore struct {
	db     *sql.DB
	logger *log.Logger
}

// NewSQLitePlaylistStore creates a new SQLitePlaylistStore with the given database connection
func NewSQLitePlaylistStore(db *sql.DB, logger *log.Logger) *SQLitePlaylistStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SQLitePlaylistStore{db: db, logger: logger}
}

// Load reads every playlist with its ids in position order.
//
// An invalid document is backed up like [SQLiteSongStore.Load] does and both tables start empty.
func (s *SQLitePlaylistStore) Load() (models.Playlists, error) {
	doc, orphan, err := s.load()
	if err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil || orphan != "" {
		if err == nil {
			err = fmt.Errorf("playlist_songs references unknown playlist %q", orphan)
		}
		if rerr := resetTables(s.db, "playlists", "playlist_songs"); rerr != nil {
			return nil, fmt.Errorf("failed to reset invalid playlists: %w", rerr)
		}
		s.logger.Warn("playlist tables were invalid, starting empty", "backup", "playlists"+BackupTableSuffix, "error", err)
		return models.NewPlaylists(), nil
	}
	return doc.Normalize(), nil
}

// load returns the rows as a document, plus the first playlist_songs name with no playlists row.
func (s *SQLitePlaylistStore) load() (models.Playlists, string, error) {
	doc := models.Playlists{}
	orphan := ""

	names, err := s.db.Query("SELECT name FROM playlists")
	if err != nil {
		return nil, "", fmt.Errorf("failed to query playlists: %w", err)
	}
	defer names.Close()

	for names.Next() {
		var name string
		if err := names.Scan(&name); err != nil {
			return nil, "", fmt.Errorf("failed to scan playlist: %w", err)
		}
		doc[name] = []string{}
	}
	if err := names.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating playlists: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT playlist_name, song_id
		FROM playlist_songs
		ORDER BY playlist_name, position
	`)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, "", fmt.Errorf("failed to scan playlist song: %w", err)
		}
		if _, ok := doc[name]; !ok {
			if orphan == "" {
				orphan = name
			}
			continue
		}
		doc[name] = append(doc[name], id)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating playlist songs: %w", err)
	}

	return doc, orphan, nil
}

// Save replaces both tables with doc.
func (s *SQLitePlaylistStore) Save(doc models.Playlists) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM playlist_songs"); err != nil {
		return fmt.Errorf("failed to clear playlist songs: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM playlists"); err != nil {
		return fmt.Errorf("failed to clear playlists: %w", err)
	}

	for _, name := range doc.Names() {
		if _, err := tx.Exec("INSERT INTO playlists (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("failed to insert playlist %q: %w", name, err)
		}
		for i, id := range doc[name] {
			if _, err := tx.Exec(
				"INSERT INTO playlist_songs (playlist_name, song_id, position) VALUES (?, ?, ?)",
				name, id, i,
			); err != nil {
				return fmt.Errorf("failed to insert song %s into %q: %w", id, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlists: %w", err)
	}
	return nil
}
