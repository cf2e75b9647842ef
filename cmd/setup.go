package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml when missing, creates the storage directory and, for the sqlite backend, runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("using existing config", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			config, err := shared.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load created config: %w", err)
			}
			r.config = config
			r.writePlain("✓ Config written to %s\n", configPath)
		}
	}

	dir := r.config.StorageDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create storage directory: %v", shared.ErrPersistence, err)
	}
	r.logger.Info("storage directory ready", "path", dir)

	if r.config.Storage.Backend == shared.BackendSQLite {
		if err := r.migrate(); err != nil {
			return err
		}
	}

	lib, err := r.library()
	if err != nil {
		return err
	}
	if err := lib.Save(); err != nil {
		return err
	}

	r.writePlain("✓ Library ready (%s backend) in %s\n", r.config.Storage.Backend, dir)
	return nil
}

func (r *Runner) migrate() error {
	path := r.config.DatabasePath()
	r.logger.Info("initializing database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", path)
	return nil
}
