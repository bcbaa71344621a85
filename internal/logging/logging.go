// Package logging configures the process-wide diagnostic log: one
// append-only file of human-readable lines with timestamp, component,
// severity, and message.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"

	"github.com/nhle/inbox-reader/internal/model"
)

// Setup opens the log sink described by cfg and installs it as the
// default slog handler. The returned closer flushes the file on exit.
// When the log file cannot be opened, logging degrades to stderr rather
// than failing startup.
func Setup(cfg model.LoggingConfig) (*slog.Logger, io.Closer) {
	var w io.Writer = os.Stderr
	var closer io.Closer

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err == nil {
			f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err == nil {
				w = f
				closer = f
			}
		}
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      parseLevel(cfg.Level),
		TimeFormat: time.DateTime,
		NoColor:    true,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closer
}

// For returns a child logger tagged with a component name.
func For(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// parseLevel maps a config string to a slog level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
