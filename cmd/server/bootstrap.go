package main

import (
	"context"
	"fmt"
	"log/slog"

	"onda/internal/adapters/http/perf"
	"onda/internal/adapters/storage"
	"onda/internal/config"
	"onda/internal/logging"
)

// loadConfig reads the config file named by --config and starts logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.Initialize(cfg.Logging)
	return cfg, nil
}

// openDatabase opens, instruments and migrates the configured database.
func openDatabase(ctx context.Context, cfg *config.Config, collector *perf.Collector) (*storage.TimedDB, error) {
	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	timed := storage.NewTimedDB(db, cfg.Database.Driver, collector, cfg.Database.SlowQuery)
	if err := storage.MigrateDB(ctx, timed); err != nil {
		timed.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database_ready", "driver", cfg.Database.Driver, "schema", storage.LatestSchemaVersion())
	return timed, nil
}
