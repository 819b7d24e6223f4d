// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"onda/internal/config"
)

var (
	mu      sync.Mutex
	rotator *lumberjack.Logger
)

// Initialize installs the default slog logger described by cfg.
// With a file configured, records go to stderr and to a rotated file.
func Initialize(cfg config.LoggingConfig) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	var w io.Writer = os.Stderr
	if cfg.File != "" {
		if rotator != nil {
			_ = rotator.Close()
		}
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		w = io.MultiWriter(os.Stderr, rotator)
	}

	logger := slog.New(createHandler(w, cfg.Format, parseLevel(cfg.Level)))
	slog.SetDefault(logger)
	return logger
}

// New returns a logger tagged with component.
func New(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

// Shutdown closes the rotated log file, if any.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	return err
}

func createHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
