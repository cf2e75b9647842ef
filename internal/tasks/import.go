package tasks

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/library"
	"github.com/desertthunder/lyrx/internal/shared"
)

// ImportExt is the file extension picked up when importing a directory.
const ImportExt = ".txt"

// Import saves lyric files into the library one at a time, in path order.
//
// Each element of paths is a file or a directory; directories are walked for [ImportExt] files. Title and artist
// are guessed from the first line and then from a file name shaped like "Artist - Title". Files whose guess matches
// an existing song are skipped. Per-file failures are recorded; only an unreadable path argument or a cancelled
// ctx returns an error.
func (e *Engine) Import(ctx context.Context, prog chan<- ProgressUpdate, paths []string) (*ImportResult, error) {
	if e.lib == nil {
		return nil, fmt.Errorf("%w: library not initialized", shared.ErrPersistence)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files to import", shared.ErrMissingArgument)
	}

	files, err := collectFiles(paths)
	if err != nil {
		return nil, err
	}
	e.sendProgress(prog, scanFilesUpdate(len(files)))

	result := &ImportResult{Total: len(files), Files: make([]ImportedFile, 0, len(files))}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("import interrupted after %d of %d files: %w", i, len(files), err)
		}

		f := e.importFile(path)
		result.add(f)
		e.sendProgress(prog, importFileUpdate(i+1, len(files), f))
	}

	e.logger.Info("import finished", "saved", result.Saved, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func (e *Engine) importFile(path string) ImportedFile {
	f := ImportedFile{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		f.Status, f.Reason = ImportFailed, err.Error()
		return f
	}

	raw := string(data)
	if strings.TrimSpace(raw) == "" {
		f.Status, f.Reason = ImportSkipped, "empty file"
		return f
	}

	f.Title, f.Artist = GuessNames(raw, path)
	if existing, ok := e.lib.FindByKey(f.Title, f.Artist); ok {
		f.Status, f.SongID = ImportSkipped, existing.ID
		f.Reason = "already in library"
		return f
	}

	song, err := e.lib.SaveRaw(raw, f.Title, f.Artist)
	if err != nil {
		e.logger.Warn("import failed", "path", path, "error", err)
		f.Status, f.Reason = ImportFailed, err.Error()
		return f
	}

	f.Status, f.SongID = ImportSaved, song.ID
	f.Title, f.Artist = song.Title, song.Artist
	return f
}

// GuessNames picks a title and artist for a lyric file.
//
// The first line wins when it carries a separator. Otherwise the file name is tried, and finally the first line
// (or file name) becomes the title under [library.UnknownArtist].
func GuessNames(raw, path string) (title, artist string) {
	if _, ok := formatter.MatchFirstLine(formatter.FirstLine(raw)); ok {
		return formatter.ParseTitleArtist(raw)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.NewReplacer("_", " ").Replace(stem)
	if _, ok := formatter.MatchFirstLine(stem); ok {
		return formatter.ParseTitleArtist(stem)
	}

	title = formatter.FirstLine(raw)
	if title == "" {
		title = stem
	}
	return title, library.UnknownArtist
}

// collectFiles expands directories into their .txt files. Explicit file arguments are kept whatever their extension.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ImportExt) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", p, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
