package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/lyrx/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the local JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("host") {
		r.config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		r.config.Server.Port = int(cmd.Int("port"))
	}

	lib, err := r.library()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := make(chan string, 1)
	go func() {
		select {
		case addr := <-ready:
			r.writePlain("✓ Serving lyrx on http://%s\n", addr)
		case <-ctx.Done():
		}
	}()

	if err := server.Serve(ctx, r.config.Addr(), server.New(lib, r.logger), r.logger, ready); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
