package tasks

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/library"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Library is the part of [library.Library] the jobs need.
type Library interface {
	Songs(q library.Query) ([]models.Song, error)
	SaveRaw(raw, title, artist string) (models.Song, error)
	FindByKey(title, artist string) (models.Song, bool)
}

// Engine runs bulk jobs against a library.
type Engine struct {
	lib    Library
	logger *log.Logger
}

// NewEngine creates a new Engine for lib.
func NewEngine(lib Library, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{lib: lib, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SongExportResult is the outcome for one exported song.
type SongExportResult struct {
	SongID string   `json:"song_id"`
	Title  string   `json:"title"`
	Artist string   `json:"artist"`
	Files  []string `json:"files"`
	Error  string   `json:"error,omitempty"`
}

// Success reports whether the song was written.
func (r SongExportResult) Success() bool {
	return r.Error == ""
}

// BulkExportResult summarizes a [Engine.BulkExport] run. It is also the manifest written next to the files.
type BulkExportResult struct {
	Format            string             `json:"format"`
	Playlist          string             `json:"playlist,omitempty"`
	TotalSongs        int                `json:"total_songs"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	OutputDirectory   string             `json:"output_directory"`
	ManifestPath      string             `json:"-"`
	Results           []SongExportResult `json:"results"`
}

// ImportStatus is the per-file outcome of [Engine.Import].
type ImportStatus string

const (
	ImportSaved   ImportStatus = "saved"
	ImportSkipped ImportStatus = "skipped"
	ImportFailed  ImportStatus = "failed"
)

// ImportedFile is the outcome for one input file.
type ImportedFile struct {
	Path   string       `json:"path"`
	Status ImportStatus `json:"status"`
	SongID string       `json:"song_id,omitempty"`
	Title  string       `json:"title,omitempty"`
	Artist string       `json:"artist,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// ImportResult summarizes an [Engine.Import] run.
type ImportResult struct {
	Total   int            `json:"total"`
	Saved   int            `json:"saved"`
	Skipped int            `json:"skipped"`
	Failed  int            `json:"failed"`
	Files   []ImportedFile `json:"files"`
}

func (r *ImportResult) add(f ImportedFile) {
	r.Files = append(r.Files, f)
	switch f.Status {
	case ImportSaved:
		r.Saved++
	case ImportSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

func (r ImportedFile) String() string {
	if r.Reason != "" {
		return fmt.Sprintf("%s %s: %s", r.Status, r.Path, r.Reason)
	}
	return fmt.Sprintf("%s %s", r.Status, r.Path)
}
