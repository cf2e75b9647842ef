package tasks

import (
	"fmt"

	"github.com/desertthunder/lyrx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadSongs Phase = iota
	ExportSongs
	WriteManifest
	ScanFiles
	ImportSongs
)

func (p Phase) String() string {
	switch p {
	case LoadSongs:
		return "load_songs"
	case ExportSongs:
		return "export_songs"
	case WriteManifest:
		return "write_manifest"
	case ScanFiles:
		return "scan_files"
	case ImportSongs:
		return "import_songs"
	default:
		return ""
	}
}

func loadSongsUpdate(count int, source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSongs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d songs from %s", count, source),
	}
}

func exportingSongUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s - %s...", step, total, song.Artist, song.Title),
	}
}

func exportCompletedUpdate(step, total int, res SongExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, res.Title, len(res.Files)),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res SongExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, res.Title, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote manifest %s", path),
	}
}

func scanFilesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanFiles,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d lyric files", count),
	}
}

func importFileUpdate(step, total int, f ImportedFile) ProgressUpdate {
	mark := "✓"
	switch f.Status {
	case ImportSkipped:
		mark = "-"
	case ImportFailed:
		mark = "✗"
	}

	msg := fmt.Sprintf("[%d/%d] %s %s", step, total, mark, f.Path)
	if f.Reason != "" {
		msg += ": " + f.Reason
	}
	return ProgressUpdate{
		Phase:   ImportSongs,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    f,
	}
}
