package logger

import (
	"io"
	"log/slog"
)

// New returns a structured JSON logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}

// LevelFromFlags maps the command-line toggles to a level. Debug wins over
// verbose; with neither set only warnings and errors are written.
func LevelFromFlags(verbose, debug bool) slog.Level {
	switch {
	case debug:
		return slog.LevelDebug
	case verbose:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
