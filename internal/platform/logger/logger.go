package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/scry-progression/internal/config"
)

// ParseLevel converts a configured level name (case-insensitive) to a slog
// level. ok is false for unknown names, in which case Info is returned.
func ParseLevel(name string) (level slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New creates a JSON logger that writes to w at the configured level.
// An invalid level falls back to info and logs a warning through the new logger.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level, ok := ParseLevel(cfg.Level)

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	if !ok {
		logger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.Level,
			"default_level", "info")
	}
	return logger
}

// Setup initializes the application's logging system based on the provided
// configuration. It creates a structured JSON logger on stderr, leaving stdout
// to command output, and sets it as the default logger for the application.
func Setup(cfg config.LogConfig) (*slog.Logger, error) {
	logger := New(cfg, os.Stderr)

	// This allows using the slog package functions directly (slog.Info, slog.Error, etc.)
	slog.SetDefault(logger)

	return logger, nil
}
