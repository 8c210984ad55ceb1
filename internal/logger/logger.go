package logger

import (
	"log/slog"
	"os"
	"strings"
)

// L is the process-wide logger. Init replaces it; components receive it via
// dependency injection and scope it with With.
var L = slog.Default()

// Init configures the global logger from the configured level and format
// ("text" or "json") and installs it as the slog default.
func Init(level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	L = slog.New(handler)
	slog.SetDefault(L)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
