package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates the process-wide JSON slog logger at the given level. Empty or
// unrecognized level strings fall back to info so a misconfigured deployment
// still logs.
func New(level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With("app", "pollgate")
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
