package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/playback"
	"github.com/desertthunder/lyrx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Play auto-scrolls a song, in the TUI or with --plain as lines printed to stdout.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	song, err := r.resolveSong(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	opts := r.playbackOptions()
	if cmd.IsSet("speed") {
		opts.Speed = playback.ClampSpeed(cmd.Float("speed"))
	}
	duration := cmd.Duration("duration")

	if !cmd.Bool("plain") {
		return r.runTUI(ctx, ui.Options{SongID: song.ID, Scroll: true, Duration: duration, Playback: opts})
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.playPlain(ctx, song.ID, opts, duration)
}

// playPlain records a play, then prints each lyric line as it scrolls into place.
func (r *Runner) playPlain(ctx context.Context, id string, opts playback.Options, duration time.Duration) error {
	song, err := r.lib.LoadSong(id)
	if err != nil {
		return err
	}

	if duration > 0 {
		opts.Speed = playback.SpeedForDuration(lineCount(song.Lyrics), opts.BufferLines, duration)
	}
	scroller := playback.NewScroller(song.Lyrics, opts)
	lines := scroller.Lines()
	buffer := len(lines) - lineCount(song.Lyrics)

	r.writePlainHeader(formatter.Heading(song))
	r.logger.Debug("auto-scroll started", "id", song.ID, "speed", scroller.Speed(), "lines", len(lines))

	frames := make(chan playback.Frame, 1)
	errCh := make(chan error, 1)
	go func() {
		defer close(frames)
		errCh <- scroller.Run(ctx, frames)
	}()

	printed := buffer
	for frame := range frames {
		for ; printed < frame.Line && printed < len(lines); printed++ {
			r.writePlain("%s\n", strings.TrimRight(lines[printed], " "))
		}
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
