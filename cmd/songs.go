package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/library"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/urfave/cli/v3"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func favoriteMark(s models.Song) string {
	if s.IsFavorite {
		return "★"
	}
	return ""
}

func lineCount(lyrics string) int {
	if lyrics == "" {
		return 0
	}
	return strings.Count(lyrics, "\n") + 1
}

func lastPlayed(s models.Song) string {
	if s.LastPlayed == nil {
		return "never"
	}
	return s.LastPlayed.Format("2006-01-02")
}

// SongAdd saves lyrics from --file or stdin.
//
// Without --no-format the text is cleaned up and blank names are guessed from its first line.
func (r *Runner) SongAdd(ctx context.Context, cmd *cli.Command) error {
	raw, err := r.readText(cmd.String("file"))
	if err != nil {
		return err
	}

	lib, err := r.library()
	if err != nil {
		return err
	}

	title, artist := cmd.String("title"), cmd.String("artist")

	var song models.Song
	if cmd.Bool("no-format") {
		guessedTitle, guessedArtist := formatter.ParseTitleArtist(raw)
		if title == "" {
			title = guessedTitle
		}
		if artist == "" {
			artist = guessedArtist
		}
		song, err = lib.SaveSong(title, artist, raw, raw)
	} else {
		song, err = lib.SaveRaw(raw, title, artist)
	}
	if err != nil {
		return err
	}

	r.logger.Debug("song saved", "id", song.ID)

	if cmd.Bool("json") {
		return r.writeJSON(song, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Saved %s (%s)\n", formatter.Heading(song), shortID(song.ID))
}

// SongList prints songs matching the query flags.
func (r *Runner) SongList(ctx context.Context, cmd *cli.Command) error {
	sort, err := library.ParseSortKey(cmd.String("sort"))
	if err != nil {
		return err
	}

	lib, err := r.library()
	if err != nil {
		return err
	}

	songs, err := lib.Songs(library.Query{
		Search:        cmd.String("search"),
		Artist:        cmd.String("artist"),
		Playlist:      cmd.String("playlist"),
		FavoritesOnly: cmd.Bool("favorites"),
		Sort:          sort,
		Limit:         int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}
	r.writeSongs(songs)
	return nil
}

func (r *Runner) writeSongs(songs []models.Song) {
	if len(songs) == 0 {
		r.writePlain("No songs.\n")
		return
	}

	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, []string{
			shortID(s.ID),
			s.Title,
			s.Artist,
			strconv.Itoa(s.PlayCount),
			lastPlayed(s),
			favoriteMark(s),
		})
	}
	r.writeTable([]string{"ID", "Title", "Artist", "Plays", "Last played", "★"}, rows)
}

// SongShow prints one song. It does not count as a play.
func (r *Runner) SongShow(ctx context.Context, cmd *cli.Command) error {
	song, err := r.resolveSong(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, cmd.Bool("pretty"))
	}

	lyrics := song.Lyrics
	if cmd.Bool("original") {
		lyrics = song.OriginalLyrics
	}

	r.writePlainHeader(formatter.Heading(song))
	r.writePlain("%s  •  %d plays  •  %d lines\n\n", shortID(song.ID), song.PlayCount, lineCount(song.Lyrics))
	return r.writePlain("%s\n", lyrics)
}

// SongEdit applies the given flags as a patch.
func (r *Runner) SongEdit(ctx context.Context, cmd *cli.Command) error {
	song, err := r.resolveSong(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	var patch models.SongPatch
	if cmd.IsSet("title") {
		title := cmd.String("title")
		patch.Title = &title
	}
	if cmd.IsSet("artist") {
		artist := cmd.String("artist")
		patch.Artist = &artist
	}
	if cmd.IsSet("file") {
		raw, err := r.readText(cmd.String("file"))
		if err != nil {
			return err
		}
		lyrics := formatter.Format(raw)
		patch.Lyrics = &lyrics
		patch.OriginalLyrics = &raw
	}
	if cmd.IsSet("favorite") {
		favorite := cmd.Bool("favorite")
		patch.IsFavorite = &favorite
	}
	if patch.Empty() {
		return fmt.Errorf("%w: nothing to change; pass --title, --artist, --file or --favorite", shared.ErrMissingArgument)
	}

	updated, err := r.lib.UpdateSong(song.ID, patch)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(updated, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Updated %s\n", formatter.Heading(updated))
}

// SongDelete removes a song from the library and every playlist.
func (r *Runner) SongDelete(ctx context.Context, cmd *cli.Command) error {
	song, err := r.resolveSong(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if err := r.lib.DeleteSong(song.ID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", formatter.Heading(song))
}

// SongFavorite toggles the favorite flag.
func (r *Runner) SongFavorite(ctx context.Context, cmd *cli.Command) error {
	song, err := r.resolveSong(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	updated, err := r.lib.ToggleFavorite(song.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(updated, cmd.Bool("pretty"))
	}
	if updated.IsFavorite {
		return r.writePlain("★ Added %s to %s\n", formatter.Heading(updated), models.FavoritesPlaylist)
	}
	return r.writePlain("☆ Removed %s from %s\n", formatter.Heading(updated), models.FavoritesPlaylist)
}

// resolveSong opens the library and looks up a song by id or unique id prefix.
func (r *Runner) resolveSong(id string) (models.Song, error) {
	id, err := requireArg("song id", id)
	if err != nil {
		return models.Song{}, err
	}

	lib, err := r.library()
	if err != nil {
		return models.Song{}, err
	}
	return lib.Resolve(id)
}
