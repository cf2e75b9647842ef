package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// ExportToCSV converts songs to CSV with columns: ID, Title, Artist, Created, Last Played, Plays, Favorite
func ExportToCSV(songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Created", "Last Played", "Plays", "Favorite"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		lastPlayed := ""
		if song.LastPlayed != nil {
			lastPlayed = song.LastPlayed.Format(time.RFC3339)
		}
		record := []string{
			song.ID,
			song.Title,
			song.Artist,
			song.CreatedAt.Format(time.RFC3339),
			lastPlayed,
			strconv.Itoa(song.PlayCount),
			strconv.FormatBool(song.IsFavorite),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportSongToText renders a song as a "Title - Artist" header followed by its lyrics.
func ExportSongToText(song models.Song) []byte {
	var buf bytes.Buffer
	buf.WriteString(Heading(song))
	buf.WriteString("\n\n")
	if song.Lyrics != "" {
		buf.WriteString(song.Lyrics)
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// ExportSongToMarkdown renders a song with its metadata. Lyric lines end in two spaces so Markdown keeps the line breaks.
func ExportSongToMarkdown(song models.Song) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", song.Title))
	buf.WriteString(fmt.Sprintf("**Artist**: %s\n", song.Artist))
	buf.WriteString(fmt.Sprintf("**Plays**: %d\n", song.PlayCount))
	if song.IsFavorite {
		buf.WriteString("**Favorite**: yes\n")
	}
	buf.WriteString("\n## Lyrics\n\n")

	for _, line := range strings.Split(song.Lyrics, "\n") {
		if line == "" {
			buf.WriteString("\n")
			continue
		}
		buf.WriteString(line + "  \n")
	}

	return buf.Bytes()
}

// ExportPlaylistToMarkdown renders a playlist as a numbered song list.
func ExportPlaylistToMarkdown(name string, songs []models.Song) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", name))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(songs)))
	buf.WriteString("## Songs\n\n")
	for i, song := range songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Artist, song.Title))
	}

	return buf.Bytes()
}

// ExportPlaylistToText renders a playlist as plain text.
func ExportPlaylistToText(name string, songs []models.Song) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", name))
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(songs)))
	for i, song := range songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Artist, song.Title))
	}

	return buf.Bytes()
}

// ToJSON renders v as indented JSON.
func ToJSON(v any) ([]byte, error) {
	return shared.MarshalJSON(v, true)
}

// Heading is the one-line "Title - Artist" label used by text exports and listings.
func Heading(song models.Song) string {
	if song.Artist == "" {
		return song.Title
	}
	return fmt.Sprintf("%s - %s", song.Title, song.Artist)
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns s into a lowercase, dash separated file name component.
func Slug(s string) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// SongFilename builds "{artist}-{title}-{id prefix}.{ext}"; the id prefix keeps same-named songs apart.
func SongFilename(song models.Song, ext string) string {
	id := song.ID
	if len(id) > 8 {
		id = id[:8]
	}
	base := Slug(song.Title)
	if song.Artist != "" {
		base = Slug(song.Artist) + "-" + base
	}
	return fmt.Sprintf("%s-%s.%s", base, id, ext)
}

// CSVExportResult contains the file paths created by a CSV export
type CSVExportResult struct {
	SongsFile string
	JSONFile  string
}

// WriteCSVExport writes the songs CSV and a full JSON dump side by side.
//
// Files are named "{base}_songs.csv" and "{base}_songs.json"; base defaults to "library".
func WriteCSVExport(songs []models.Song, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "library"
	}

	csvData, err := ExportToCSV(songs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := baseFilepath + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	jsonData, err := ToJSON(songs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}

	jsonFile := baseFilepath + "_songs.json"
	if err := os.WriteFile(jsonFile, jsonData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write JSON file: %w", err)
	}

	return &CSVExportResult{SongsFile: songsFile, JSONFile: jsonFile}, nil
}
