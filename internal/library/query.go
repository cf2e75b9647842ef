package library

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// UnknownArtist labels songs saved without an artist in [Library.Artists].
const UnknownArtist = "Unknown Artist"

// SortKey orders [Library.Songs] results.
type SortKey string

const (
	SortNone   SortKey = ""
	SortTitle  SortKey = "title"
	SortArtist SortKey = "artist"
	SortRecent SortKey = "recent"
)

// ParseSortKey validates a user supplied sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortNone, SortTitle, SortArtist, SortRecent:
		return key, nil
	default:
		return SortNone, fmt.Errorf("%w: unknown sort %q (want title, artist or recent)", shared.ErrInvalidArgument, s)
	}
}

// Query filters and sorts a song listing. Zero values mean "no filter".
type Query struct {
	Search        string  // case-insensitive substring of title or artist
	Artist        string  // case-insensitive artist equality
	FavoritesOnly bool    // only songs flagged as favorite
	Playlist      string  // only songs in this playlist, in playlist order unless Sort is set
	Sort          SortKey // SortNone keeps insertion (or playlist) order
	Limit         int
}

// Songs lists songs matching q.
func (l *Library) Songs(q Query) ([]models.Song, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var songs []models.Song
	if q.Playlist != "" {
		var err error
		if songs, err = l.playlistSongs(q.Playlist); err != nil {
			return nil, err
		}
	} else {
		songs = l.songs.List()
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := songs[:0]
	for _, song := range songs {
		if q.FavoritesOnly && !song.IsFavorite {
			continue
		}
		if q.Artist != "" && !strings.EqualFold(song.Artist, strings.TrimSpace(q.Artist)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(song.Title), search) &&
			!strings.Contains(strings.ToLower(song.Artist), search) {
			continue
		}
		out = append(out, song)
	}

	SortSongs(out, q.Sort)

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// SortSongs orders songs in place. Sorting is stable so equal keys keep their prior order.
//
// SortRecent puts the most recently played first, never-played songs last, and breaks ties by newest created.
func SortSongs(songs []models.Song, key SortKey) {
	switch key {
	case SortTitle:
		sort.SliceStable(songs, func(i, j int) bool {
			return strings.ToLower(songs[i].Title) < strings.ToLower(songs[j].Title)
		})
	case SortArtist:
		sort.SliceStable(songs, func(i, j int) bool {
			a, b := strings.ToLower(songs[i].Artist), strings.ToLower(songs[j].Artist)
			if a != b {
				return a < b
			}
			return strings.ToLower(songs[i].Title) < strings.ToLower(songs[j].Title)
		})
	case SortRecent:
		sort.SliceStable(songs, func(i, j int) bool {
			pi, pj := songs[i].LastPlayed, songs[j].LastPlayed
			switch {
			case pi != nil && pj != nil && !pi.Equal(*pj):
				return pi.After(*pj)
			case pi != nil && pj == nil:
				return true
			case pi == nil && pj != nil:
				return false
			}
			return songs[i].CreatedAt.After(songs[j].CreatedAt)
		})
	}
}

// ArtistGroup is one artist and their songs.
type ArtistGroup struct {
	Artist string        `json:"artist"`
	Songs  []models.Song `json:"songs"`
}

// Artists groups songs by artist. Artists sort case-insensitively and songs by title.
func (l *Library) Artists() []ArtistGroup {
	l.mu.Lock()
	defer l.mu.Unlock()

	groups := make(map[string]*ArtistGroup)
	var order []string
	for _, song := range l.songs.List() {
		name := strings.TrimSpace(song.Artist)
		if name == "" {
			name = UnknownArtist
		}
		key := strings.ToLower(name)
		g, ok := groups[key]
		if !ok {
			g = &ArtistGroup{Artist: name}
			groups[key] = g
			order = append(order, key)
		}
		g.Songs = append(g.Songs, song)
	}

	sort.Strings(order)
	out := make([]ArtistGroup, 0, len(order))
	for _, key := range order {
		g := groups[key]
		SortSongs(g.Songs, SortTitle)
		out = append(out, *g)
	}
	return out
}

// Resolve finds a song by full id or by a unique id prefix.
func (l *Library) Resolve(idOrPrefix string) (models.Song, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return models.Song{}, fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}
	if song, err := l.songs.Get(idOrPrefix); err == nil {
		return song, nil
	}

	var matches []models.Song
	for _, song := range l.songs.List() {
		if strings.HasPrefix(song.ID, idOrPrefix) {
			matches = append(matches, song)
		}
	}

	switch len(matches) {
	case 0:
		return models.Song{}, fmt.Errorf("%w: song %s", shared.ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return models.Song{}, fmt.Errorf("%w: id prefix %s matches %d songs", shared.ErrValidation, idOrPrefix, len(matches))
	}
}

// FindByKey returns a song whose normalized title and artist match.
func (l *Library) FindByKey(title, artist string) (models.Song, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := shared.NormalizeSongKey(title, artist)
	for _, song := range l.songs.List() {
		if shared.NormalizeSongKey(song.Title, song.Artist) == key {
			return song, true
		}
	}
	return models.Song{}, false
}

// Stats summarizes the library.
type Stats struct {
	Songs     int `json:"songs"`
	Playlists int `json:"playlists"`
	Favorites int `json:"favorites"`
	Plays     int `json:"plays"`
	Artists   int `json:"artists"`
}

// Stats counts songs, playlists, favorites, total plays and distinct artists.
func (l *Library) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Stats{Playlists: len(l.playlists.Playlists())}
	var artists []string
	for _, song := range l.songs.List() {
		stats.Songs++
		stats.Plays += song.PlayCount
		if song.IsFavorite {
			stats.Favorites++
		}
		if a := strings.ToLower(strings.TrimSpace(song.Artist)); !slices.Contains(artists, a) {
			artists = append(artists, a)
		}
	}
	stats.Artists = len(artists)
	return stats
}
