// Package logging assembles the structured slog loggers used across
// anvilup. Prefer these constructors over hand-rolled slog setup so all
// components emit lines with the same shape and destination.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel overrides the log level when set ("debug", "info", "warn",
// "error").
const EnvLevel = "ANVILUP_LOG"

// New constructs the CLI logger. Verbose lowers the level to debug; the
// ANVILUP_LOG environment variable wins over both.
func New(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if env := os.Getenv(EnvLevel); env != "" {
		level = parseLevel(env, level)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// Nop returns a logger that discards everything. Intended for tests and
// wiring code that cannot fail.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(127),
	}))
}

func parseLevel(raw string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

type contextKey struct{}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger attached to the context, or Nop when none
// is attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return Nop()
}
