package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Default returns a structured logger for the named component.
// Level and output format are controlled by environment variables:
//   - SCRIPTMAP_LOG_LEVEL: debug, info, warn, error (default: info)
//   - SCRIPTMAP_LOG_FORMAT: text, json (default: text)
func Default(component string) *slog.Logger {
	return New(os.Stderr, component,
		os.Getenv("SCRIPTMAP_LOG_LEVEL"),
		os.Getenv("SCRIPTMAP_LOG_FORMAT"))
}

// New builds a logger writing to w with explicit level and format strings.
// Unrecognized values fall back to info/text.
func New(w io.Writer, component, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	if component != "" {
		logger = logger.With("component", component)
	}
	return logger
}

// parseLevel maps a level name to a slog level, defaulting to info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
