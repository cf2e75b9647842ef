package formatter

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	th "github.com/desertthunder/lyrx/internal/testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "collapses blank runs", raw: "line one\n\n\nline two", want: "line one\n\nline two"},
		{name: "trims lines", raw: "  a  \n b\t", want: "a\nb"},
		{name: "all whitespace", raw: "   \n\t\n", want: ""},
		{name: "empty", raw: "", want: ""},
		{name: "windows line endings", raw: "a\r\n\r\n\r\nb", want: "a\n\nb"},
		{name: "drops blank edges", raw: "\n\na\n\n", want: "a"},
		{name: "whitespace-only lines count as blank", raw: "a\n   \n\t\nb", want: "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.raw)
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if again := Format(got); again != got {
				t.Errorf("Format is not idempotent: %q -> %q", got, again)
			}
		})
	}

	t.Run("Photograph keeps at most one blank line", func(t *testing.T) {
		got := Format("line one\n\n\nline two")
		if strings.Contains(got, "\n\n\n") {
			t.Errorf("expected at most one blank line, got %q", got)
		}
		if !strings.HasPrefix(got, "line one") || !strings.HasSuffix(got, "line two") {
			t.Errorf("unexpected content: %q", got)
		}
	})
}

func TestFormatWith(t *testing.T) {
	t.Run("IndentChorus", func(t *testing.T) {
		got := FormatWith("verse\nhey\nHey\nhey\nend", Options{IndentChorus: true})
		want := "verse\n    hey\n    Hey\n    hey\nend"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("lines repeated twice are not indented", func(t *testing.T) {
		got := FormatWith("hey\nhey", Options{IndentChorus: true})
		if got != "hey\nhey" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("SpaceSections", func(t *testing.T) {
		got := FormatWith("[Verse]\na\n[Chorus]\nb", Options{SpaceSections: true})
		want := "[Verse]\n\na\n\n[Chorus]\n\nb"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("no options matches Format", func(t *testing.T) {
		raw := " a \n\n\n b "
		if FormatWith(raw, Options{}) != Format(raw) {
			t.Error("FormatWith with zero options should equal Format")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := FormatWith("  \n", Options{IndentChorus: true, SpaceSections: true}); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("\n  \n hi \nthere"); got != "hi" {
		t.Errorf("FirstLine() = %q, want hi", got)
	}
	if got := FirstLine(" \n "); got != "" {
		t.Errorf("FirstLine() = %q, want empty", got)
	}
}

func TestParseTitleArtist(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantTitle  string
		wantArtist string
	}{
		{name: "by separator", raw: "Yesterday by The Beatles", wantTitle: "Yesterday", wantArtist: "The Beatles"},
		{name: "artist title default", raw: "Coldplay - Yellow", wantTitle: "Yellow", wantArtist: "Coldplay"},
		{name: "hyphenated artist", raw: "Jay-Z - Encore", wantTitle: "Encore", wantArtist: "Jay-Z"},
		{name: "featuring in first group", raw: "Drake feat. Rihanna - Take Care", wantTitle: "Take Care", wantArtist: "Drake feat. Rihanna"},
		{name: "featuring in second group", raw: "Umbrella - Rihanna ft. Jay-Z", wantTitle: "Umbrella", wantArtist: "Rihanna ft. Jay-Z"},
		{name: "unspaced featuring in first group", raw: "The Weeknd feat.Daft Punk - Starboy", wantTitle: "Starboy", wantArtist: "The Weeknd feat.Daft Punk"},
		{name: "unspaced ft in first group", raw: "The Weeknd ft.Daft Punk - Starboy", wantTitle: "Starboy", wantArtist: "The Weeknd ft.Daft Punk"},
		{name: "unspaced ft in second group", raw: "Starboy - The Weeknd ft.Daft Punk", wantTitle: "Starboy", wantArtist: "The Weeknd ft.Daft Punk"},
		{name: "ampersand duo", raw: "Simon & Garfunkel - Mrs Robinson", wantTitle: "Mrs Robinson", wantArtist: "Simon & Garfunkel"},
		{name: "filler word in first group", raw: "Love Story - Taylor Swift", wantTitle: "Love Story", wantArtist: "Taylor Swift"},
		{name: "filler word in second group", raw: "Adele - Someone Like You", wantTitle: "Someone Like You", wantArtist: "Adele"},
		{name: "pipe", raw: "Queen | Bohemian Rhapsody", wantTitle: "Bohemian Rhapsody", wantArtist: "Queen"},
		{name: "bracket", raw: "[Nirvana] Lithium", wantTitle: "Lithium", wantArtist: "Nirvana"},
		{name: "unspaced hyphen splits as a dash", raw: "Jay-Z", wantTitle: "Z", wantArtist: "Jay"},
		{name: "no separator", raw: "Just some lyrics here", wantTitle: "Just some lyrics here", wantArtist: ""},
		{name: "empty", raw: "  \n ", wantTitle: "", wantArtist: ""},
		{name: "uses first non-empty line", raw: "\n\n  Yesterday by The Beatles \nAll my troubles", wantTitle: "Yesterday", wantArtist: "The Beatles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, artist := ParseTitleArtist(tt.raw)
			if title != tt.wantTitle || artist != tt.wantArtist {
				t.Errorf("ParseTitleArtist(%q) = (%q, %q), want (%q, %q)", tt.raw, title, artist, tt.wantTitle, tt.wantArtist)
			}
		})
	}

	t.Run("plain dash pairs return halves swapped", func(t *testing.T) {
		pairs := [][2]string{
			{"Radiohead", "Creep"},
			{"Daft Punk", "Get Lucky"},
			{"Nirvana", "Lithium"},
			{"Oasis", "Wonderwall"},
		}
		for _, p := range pairs {
			title, artist := ParseTitleArtist(p[0] + " - " + p[1])
			if title != p[1] || artist != p[0] {
				t.Errorf("%s - %s: got (%q, %q)", p[0], p[1], title, artist)
			}
		}
	})

	t.Run("by lines return before and after", func(t *testing.T) {
		lines := [][2]string{
			{"Hurt", "Johnny Cash"},
			{"Purple Rain", "Prince"},
			{"Respect", "Aretha Franklin"},
		}
		for _, l := range lines {
			title, artist := ParseTitleArtist(l[0] + " by " + l[1])
			if title != l[0] || artist != l[1] {
				t.Errorf("%s by %s: got (%q, %q)", l[0], l[1], title, artist)
			}
		}
	})
}

func TestTitleRules(t *testing.T) {
	names := make([]string, 0, len(TitleRules))
	for _, r := range TitleRules {
		names = append(names, r.Name)
	}
	want := "by-separator,featuring-first,featuring-second,filler-words,artist-title-default"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("rule order = %s, want %s", got, want)
	}

	t.Run("rules without an opinion", func(t *testing.T) {
		m := Match{Separator: SeparatorDash, First: "Muse", Second: "Uprising"}
		for _, r := range TitleRules[:4] {
			if _, _, ok := r.Decide(m); ok {
				t.Errorf("rule %s should have no opinion on %+v", r.Name, m)
			}
		}
		title, artist, ok := TitleRules[4].Decide(m)
		if !ok || title != "Uprising" || artist != "Muse" {
			t.Errorf("default rule = (%q, %q, %v)", title, artist, ok)
		}
	})

	t.Run("filler words in both groups is a tie", func(t *testing.T) {
		m := Match{Separator: SeparatorDash, First: "The Cure", Second: "Love Song"}
		if _, _, ok := TitleRules[3].Decide(m); ok {
			t.Error("filler-words should have no opinion when both groups match")
		}
	})
}

func TestMatchFirstLine(t *testing.T) {
	tests := []struct {
		line string
		sep  Separator
		ok   bool
	}{
		{line: "A - B", sep: SeparatorDash, ok: true},
		{line: "A by B", sep: SeparatorBy, ok: true},
		{line: "A | B", sep: SeparatorPipe, ok: true},
		{line: "[A] B", sep: SeparatorBracket, ok: true},
		{line: "nothing to see", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m, ok := MatchFirstLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && m.Separator != tt.sep {
				t.Errorf("separator = %s, want %s", m.Separator, tt.sep)
			}
		})
	}
}

func TestHasFeaturingMarker(t *testing.T) {
	tests := map[string]bool{
		"Drake feat. Rihanna": true,
		"Drake feat Rihanna":  true,
		"Rihanna ft. Jay-Z":   true,
		"Weeknd feat.Daft":    true,
		"Weeknd ft.Daft":      true,
		"Featherweight":       false,
		"Often":               false,
		"A featuring B":       true,
		"Salt and Pepa":       true,
		"Simon & Garfunkel":   true,
		"Sandstorm":           false,
		"Defeat":              false,
		"Coldplay":            false,
	}
	for s, want := range tests {
		if got := HasFeaturingMarker(s); got != want {
			t.Errorf("HasFeaturingMarker(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestExporters(t *testing.T) {
	played := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	songs := []models.Song{
		{
			ID:         "0123456789abcdef",
			Title:      "Photograph",
			Artist:     "Ed Sheeran",
			Lyrics:     "line one\n\nline two",
			CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			LastPlayed: &played,
			PlayCount:  3,
			IsFavorite: true,
		},
		{
			ID:        "fedcba9876543210",
			Title:     "Yesterday",
			Artist:    "The Beatles",
			Lyrics:    "All my troubles",
			CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(songs)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "ID,Title,Artist,Created,Last Played,Plays,Favorite") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "0123456789abcdef,Photograph,Ed Sheeran,2024-01-01T00:00:00Z,2024-03-01T12:00:00Z,3,true") {
			t.Errorf("CSV missing first row, got: %s", output)
		}
		if !strings.Contains(output, "Yesterday,The Beatles,2024-02-01T00:00:00Z,,0,false") {
			t.Errorf("CSV missing empty last played, got: %s", output)
		}
	})

	t.Run("ExportSongToText", func(t *testing.T) {
		output := string(ExportSongToText(songs[0]))
		if !strings.HasPrefix(output, "Photograph - Ed Sheeran\n\n") {
			t.Errorf("unexpected header: %q", output)
		}
		if !strings.Contains(output, "line one\n\nline two\n") {
			t.Errorf("missing lyrics: %q", output)
		}
	})

	t.Run("ExportSongToMarkdown", func(t *testing.T) {
		output := string(ExportSongToMarkdown(songs[0]))
		for _, want := range []string{"# Photograph", "**Artist**: Ed Sheeran", "**Plays**: 3", "**Favorite**: yes", "line one  \n"} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown missing %q, got: %s", want, output)
			}
		}
		if strings.Contains(string(ExportSongToMarkdown(songs[1])), "**Favorite**") {
			t.Error("non-favorite should not be marked")
		}
	})

	t.Run("ExportPlaylistToMarkdown", func(t *testing.T) {
		output := string(ExportPlaylistToMarkdown("Road Trip", songs))
		for _, want := range []string{"# Road Trip", "**Songs**: 2", "1. Ed Sheeran - Photograph", "2. The Beatles - Yesterday"} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportPlaylistToText", func(t *testing.T) {
		output := string(ExportPlaylistToText("Road Trip", songs[:1]))
		if !strings.Contains(output, "Playlist: Road Trip\nSongs: 1\n\n1. Ed Sheeran - Photograph\n") {
			t.Errorf("unexpected text: %q", output)
		}
	})

	t.Run("ToJSON", func(t *testing.T) {
		data, err := ToJSON(songs[1])
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}
		output := string(data)
		if !strings.Contains(output, `"title": "Yesterday"`) || !strings.Contains(output, `"last_played": null`) {
			t.Errorf("unexpected JSON: %s", output)
		}
	})

	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "lib")
		result, err := WriteCSVExport(songs, base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		th.AssertFileExists(t, result.SongsFile)
		th.AssertFileExists(t, result.JSONFile)

		if !strings.HasSuffix(result.SongsFile, "lib_songs.csv") {
			t.Errorf("unexpected CSV path %s", result.SongsFile)
		}
		if !strings.Contains(th.MustReadFile(t, result.JSONFile), "Photograph") {
			t.Error("JSON export missing song")
		}
	})

	t.Run("WriteCSVExport to missing directory fails", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "missing", "lib")
		if _, err := WriteCSVExport(songs, base); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}

func TestFilenames(t *testing.T) {
	tests := map[string]string{
		"Ed Sheeran!":      "ed-sheeran",
		"  Mrs. Robinson ": "mrs-robinson",
		"!!!":              "untitled",
		"AC/DC":            "ac-dc",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}

	song := models.Song{ID: "0123456789abcdef", Title: "Photograph", Artist: "Ed Sheeran"}
	if got := SongFilename(song, "txt"); got != "ed-sheeran-photograph-01234567.txt" {
		t.Errorf("SongFilename() = %q", got)
	}

	song.Artist = ""
	if got := SongFilename(song, "md"); got != "photograph-01234567.md" {
		t.Errorf("SongFilename() without artist = %q", got)
	}

	if got := Heading(song); got != "Photograph" {
		t.Errorf("Heading() without artist = %q", got)
	}
}
