package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// FormatOutput is the JSON shape of `lyrx format --json`.
type FormatOutput struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Lyrics string `json:"lyrics"`
}

// Format prints cleaned-up lyrics read from a file or stdin, preceded by the guessed heading.
func (r *Runner) Format(ctx context.Context, cmd *cli.Command) error {
	raw, err := r.readText(cmd.StringArg("path"))
	if err != nil {
		return err
	}

	opts := formatter.Options{
		IndentChorus:  cmd.Bool("indent-chorus"),
		SpaceSections: cmd.Bool("space-sections"),
	}
	title, artist := formatter.ParseTitleArtist(raw)
	out := FormatOutput{Title: title, Artist: artist, Lyrics: formatter.FormatWith(raw, opts)}

	if cmd.Bool("json") {
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	if artist != "" {
		r.writePlain("# %s - %s\n\n", title, artist)
	} else if title != "" {
		r.writePlain("# %s\n\n", title)
	}
	return r.writePlain("%s\n", out.Lyrics)
}

// readText reads path, or the runner's input when path is empty or "-".
func (r *Runner) readText(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(r.input)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return string(data), nil
}

func requireArg(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return value, nil
}
