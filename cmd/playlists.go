package main

import (
	"context"
	"strconv"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate creates an empty playlist.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg("playlist name", cmd.StringArg("name"))
	if err != nil {
		return err
	}

	lib, err := r.library()
	if err != nil {
		return err
	}
	if err := lib.CreatePlaylist(name); err != nil {
		return err
	}
	return r.writePlain("✓ Created playlist %q\n", name)
}

// PlaylistDelete deletes a playlist. Favorites cannot be deleted.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg("playlist name", cmd.StringArg("name"))
	if err != nil {
		return err
	}

	lib, err := r.library()
	if err != nil {
		return err
	}
	if err := lib.DeletePlaylist(name); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted playlist %q\n", name)
}

// PlaylistAdd appends a song to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg("playlist name", cmd.StringArg("name"))
	if err != nil {
		return err
	}
	song, err := r.resolveSong(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	added, err := r.lib.AddToPlaylist(name, song.ID)
	if err != nil {
		return err
	}
	if !added {
		return r.writePlain("- %s is already in %q\n", formatter.Heading(song), name)
	}
	return r.writePlain("✓ Added %s to %q\n", formatter.Heading(song), name)
}

// PlaylistRemove removes a song from a playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg("playlist name", cmd.StringArg("name"))
	if err != nil {
		return err
	}
	song, err := r.resolveSong(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if err := r.lib.RemoveFromPlaylist(name, song.ID); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s from %q\n", formatter.Heading(song), name)
}

// PlaylistList prints every playlist with its song count.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.library()
	if err != nil {
		return err
	}

	playlists := lib.Playlists()
	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(playlists))
	for _, pl := range playlists {
		name := pl.Name
		if name == models.FavoritesPlaylist {
			name = "★ " + name
		}
		rows = append(rows, []string{name, strconv.Itoa(len(pl.SongIDs))})
	}
	r.writeTable([]string{"Playlist", "Songs"}, rows)
	return nil
}

// PlaylistShow prints the songs of one playlist in order.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg("playlist name", cmd.StringArg("name"))
	if err != nil {
		return err
	}

	lib, err := r.library()
	if err != nil {
		return err
	}

	songs, err := lib.PlaylistSongs(name)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}
	r.writePlainHeader(name)
	r.writeSongs(songs)
	return nil
}
