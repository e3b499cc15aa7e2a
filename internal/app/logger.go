package app

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a text logger writing to w at the given level.
// verbose forces debug and adds source locations.
func NewLogger(level string, verbose bool, w io.Writer) *slog.Logger {
	logLevel := toLevel(level)
	if verbose {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		AddSource: verbose,
		Level:     logLevel,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// toLevel converts a level name to slog.Level, defaulting to info.
func toLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
