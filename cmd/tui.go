package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyrx/internal/playback"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive library browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	return r.runTUI(ctx, ui.Options{})
}

// runTUI redirects logs to the configured log file and runs the bubbletea program until it quits.
func (r *Runner) runTUI(ctx context.Context, opts ui.Options) error {
	fileLogger, err := shared.NewFileLogger(r.config.LogFile())
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	lib, err := r.library()
	if err != nil {
		return err
	}

	opts.Logger = r.logger
	if opts.Playback == (playback.Options{}) {
		opts.Playback = r.playbackOptions()
	}

	model := ui.NewModel(ctx, lib, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func (r *Runner) playbackOptions() playback.Options {
	return playback.Options{
		Speed:       r.config.Playback.Speed,
		BufferLines: r.config.Playback.BufferLines,
		FPS:         r.config.Playback.FPS,
	}
}
