// Package logging configures the process-wide slog logger.
//
// The interactive UI owns the terminal, so it logs to a file or nowhere;
// the batch commands log to stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup installs a default logger writing to w.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string, w io.Writer) {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// SetupFile opens path for appending and logs there. An empty path discards
// all output. The returned closer must be called on exit.
func SetupFile(level, format, path string) (io.Closer, error) {
	if path == "" {
		Setup(level, format, io.Discard)
		return io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	Setup(level, format, f)
	return f, nil
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
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
