package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// LibraryClear deletes every song and playlist. Requires --yes.
func (r *Runner) LibraryClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: clearing the library cannot be undone; pass --yes to confirm", shared.ErrMissingArgument)
	}

	lib, err := r.library()
	if err != nil {
		return err
	}
	if err := lib.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Library cleared\n")
}

// printProgress renders updates until progressCh is closed, then closes done.
func (r *Runner) printProgress(progressCh <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	for update := range progressCh {
		switch update.Phase {
		case tasks.LoadSongs, tasks.ScanFiles:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.ExportSongs, tasks.ImportSongs:
			r.writePlain("   %s\n", update.Message)
		case tasks.WriteManifest:
			r.writePlain("\n📝 %s\n", update.Message)
		}
	}
}

// runWithProgress runs fn with a progress channel. Progress is only printed for plain output.
func (r *Runner) runWithProgress(quiet bool, fn func(chan<- tasks.ProgressUpdate) error) error {
	if quiet {
		return fn(nil)
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progressCh, done)

	err := fn(progressCh)
	close(progressCh)
	<-done
	return err
}

// LibraryExport writes songs to per-song files (or one csv table) plus a manifest.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if !tasks.ValidFormat(format) {
		return fmt.Errorf("%w: unknown export format %q (json, markdown, txt, csv)", shared.ErrInvalidArgument, format)
	}

	if _, err := r.library(); err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:        format,
		OutputDir:     cmd.String("output"),
		NumWorkers:    int(cmd.Int("workers")),
		RateLimit:     cmd.Float("rate"),
		Playlist:      cmd.String("playlist"),
		FavoritesOnly: cmd.Bool("favorites"),
	}
	r.logger.Info("starting export", "format", opts.Format, "playlist", opts.Playlist)

	useJSON := cmd.Bool("json")
	var result *tasks.BulkExportResult
	err := r.runWithProgress(useJSON, func(progressCh chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.engine.BulkExport(ctx, progressCh, opts)
		return err
	})
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Format: %s\n", result.Format)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalSongs)
	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d songs:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success() {
				r.writePlain("  - %s - %s: %s\n", res.Artist, res.Title, res.Error)
			}
		}
	}
	return nil
}

// LibraryImport saves .txt files (or directories of them) named on the command line.
func (r *Runner) LibraryImport(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one file or directory", shared.ErrMissingArgument)
	}

	if _, err := r.library(); err != nil {
		return err
	}

	useJSON := cmd.Bool("json")
	var result *tasks.ImportResult
	err := r.runWithProgress(useJSON, func(progressCh chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.engine.Import(ctx, progressCh, paths)
		return err
	})
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("Saved: %d  Skipped: %d  Failed: %d  (of %d files)\n", result.Saved, result.Skipped, result.Failed, result.Total)
	return nil
}

// LibraryArtists prints songs grouped by artist.
func (r *Runner) LibraryArtists(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.library()
	if err != nil {
		return err
	}

	groups := lib.Artists()
	if cmd.Bool("json") {
		return r.writeJSON(groups, cmd.Bool("pretty"))
	}
	if len(groups) == 0 {
		return r.writePlain("No songs.\n")
	}

	rows := [][]string{}
	for _, g := range groups {
		for i, s := range g.Songs {
			artist := ""
			if i == 0 {
				artist = g.Artist
			}
			rows = append(rows, []string{artist, s.Title, shortID(s.ID), strconv.Itoa(s.PlayCount)})
		}
	}
	r.writeTable([]string{"Artist", "Title", "ID", "Plays"}, rows)
	return nil
}

// LibraryStats prints library counts.
func (r *Runner) LibraryStats(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.library()
	if err != nil {
		return err
	}

	stats := lib.Stats()
	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}

	r.writeTable([]string{"Songs", "Artists", "Playlists", "Favorites", "Plays"}, [][]string{{
		strconv.Itoa(stats.Songs),
		strconv.Itoa(stats.Artists),
		strconv.Itoa(stats.Playlists),
		strconv.Itoa(stats.Favorites),
		strconv.Itoa(stats.Plays),
	}})
	return nil
}
