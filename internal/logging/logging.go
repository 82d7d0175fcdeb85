// Package logging configures docsift's own diagnostics. They always go
// to stderr so they never pollute the filtered result stream on stdout.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default slog logger. With jsonOutput set (the jsonl
// result format), diagnostics are emitted as JSON too, so a consumer
// capturing both streams gets machine-readable lines on each.
func Setup(jsonOutput bool, level string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ParseLevel converts a level name to slog.Level. Unknown names fall back
// to LevelWarn, keeping the filter quiet by default.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
