package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/library"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	"golang.org/x/time/rate"
)

// ManifestName is the summary file written into every export directory.
const ManifestName = "export_manifest.json"

// Export formats
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatCSV      = "csv"
)

// BulkExportOpts contains configuration for bulk song exports.
type BulkExportOpts struct {
	Format        string  // Export format: json, csv, markdown, txt
	OutputDir     string  // Base output directory (default: lyrx_export_{epoch})
	NumWorkers    int     // Concurrent workers (default: 5, max: 10)
	RateLimit     float64 // Files written per second; zero or less means unlimited
	Playlist      string  // Export only this playlist, plus a playlist index file
	FavoritesOnly bool
}

// ValidFormat reports whether f names a supported export format.
func ValidFormat(f string) bool {
	switch f {
	case FormatJSON, FormatMarkdown, FormatText, FormatCSV:
		return true
	}
	return false
}

type songExportJob struct {
	Index int
	Song  models.Song
}

// BulkExport writes songs to disk concurrently with rate limiting and progress tracking.
//
// Songs are written one file per song by a worker pool, except csv, which writes a single table (plus a JSON dump)
// for the whole selection. Individual failures are recorded in the result; the returned error is reserved for
// problems that stop the whole export.
func (e *Engine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.lib == nil {
		return nil, fmt.Errorf("%w: library not initialized", shared.ErrPersistence)
	}

	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if !ValidFormat(opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("lyrx_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	songs, err := e.lib.Songs(library.Query{Playlist: opts.Playlist, FavoritesOnly: opts.FavoritesOnly})
	if err != nil {
		return nil, err
	}

	source := "library"
	if opts.Playlist != "" {
		source = fmt.Sprintf("playlist %q", opts.Playlist)
	}
	e.sendProgress(prog, loadSongsUpdate(len(songs), source))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		Playlist:        opts.Playlist,
		TotalSongs:      len(songs),
		OutputDirectory: opts.OutputDir,
		Results:         make([]SongExportResult, 0, len(songs)),
	}

	if opts.Format == FormatCSV {
		if err := e.exportTable(songs, opts, result); err != nil {
			return result, err
		}
	} else {
		if err := e.exportSongs(ctx, prog, songs, opts, result); err != nil {
			return result, err
		}
		if opts.Playlist != "" {
			if err := writePlaylistIndex(songs, opts); err != nil {
				return result, err
			}
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))

	e.logger.Info("export finished",
		"format", opts.Format, "dir", opts.OutputDir,
		"ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

// exportSongs fans songs out to the worker pool and collects results in completion order.
func (e *Engine) exportSongs(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	songs []models.Song,
	opts BulkExportOpts,
	result *BulkExportResult,
) error {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	jobs := make(chan songExportJob, len(songs))
	results := make(chan SongExportResult, len(songs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, song := range songs {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			jobs <- songExportJob{Index: i, Song: song}
			e.sendProgress(prog, exportingSongUpdate(i+1, len(songs), song))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success() {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(songs), res))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(songs), res))
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("export interrupted after %d of %d songs: %w", completed, len(songs), err)
	}
	return nil
}

// exportWorker is a worker goroutine that exports songs from the jobs channel.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan songExportJob,
	results chan<- SongExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportSingleSong(job, opts)
	}
}

// exportSingleSong writes one song in the requested format.
func (e *Engine) exportSingleSong(j songExportJob, opts BulkExportOpts) SongExportResult {
	result := SongExportResult{
		SongID: j.Song.ID,
		Title:  j.Song.Title,
		Artist: j.Song.Artist,
		Files:  []string{},
	}

	var (
		data []byte
		ext  string
		err  error
	)
	switch opts.Format {
	case FormatMarkdown:
		data, ext = formatter.ExportSongToMarkdown(j.Song), "md"
	case FormatText:
		data, ext = formatter.ExportSongToText(j.Song), "txt"
	default:
		ext = "json"
		if data, err = formatter.ToJSON(j.Song); err != nil {
			result.Error = fmt.Sprintf("JSON marshal failed: %v", err)
			return result
		}
	}

	path := filepath.Join(opts.OutputDir, formatter.SongFilename(j.Song, ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		e.logger.Warn("song export failed", "id", j.Song.ID, "error", err)
		result.Error = fmt.Sprintf("%s write failed: %v", ext, err)
		return result
	}
	result.Files = []string{path}
	return result
}

// exportTable writes the whole selection as one CSV file and one JSON file.
func (e *Engine) exportTable(songs []models.Song, opts BulkExportOpts, result *BulkExportResult) error {
	base := "library"
	if opts.Playlist != "" {
		base = formatter.Slug(opts.Playlist)
	}

	csvRes, err := formatter.WriteCSVExport(songs, filepath.Join(opts.OutputDir, base))
	if err != nil {
		return fmt.Errorf("CSV export failed: %w", err)
	}

	files := []string{csvRes.SongsFile, csvRes.JSONFile}
	for _, song := range songs {
		result.Results = append(result.Results, SongExportResult{
			SongID: song.ID,
			Title:  song.Title,
			Artist: song.Artist,
			Files:  files,
		})
	}
	result.SuccessfulExports = len(songs)
	return nil
}

func writePlaylistIndex(songs []models.Song, opts BulkExportOpts) error {
	var (
		data []byte
		ext  = "md"
	)
	switch opts.Format {
	case FormatText:
		data, ext = formatter.ExportPlaylistToText(opts.Playlist, songs), "txt"
	case FormatJSON:
		var err error
		ext = "json"
		data, err = formatter.ToJSON(models.Playlist{Name: opts.Playlist, SongIDs: songIDs(songs)})
		if err != nil {
			return fmt.Errorf("failed to encode playlist index: %w", err)
		}
	default:
		data = formatter.ExportPlaylistToMarkdown(opts.Playlist, songs)
	}

	path := filepath.Join(opts.OutputDir, fmt.Sprintf("playlist-%s.%s", formatter.Slug(opts.Playlist), ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write playlist index: %w", err)
	}
	return nil
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func songIDs(songs []models.Song) []string {
	ids := make([]string, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	return ids
}
