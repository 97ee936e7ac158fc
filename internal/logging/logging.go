// Package logging writes structured logs to <home>/logs/tally.log.
// Commands print to the terminal; the log file is for diagnosing what the
// tracker did between invocations.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the log file name inside the logs directory.
const FileName = "tally.log"

// Path returns the log file location for the home directory dir.
func Path(dir string) string {
	return filepath.Join(dir, "logs", FileName)
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Open returns a logger appending to the log file under dir. The returned
// closer releases the file. If dir is empty, logging is disabled.
func Open(dir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if dir == "" {
		return Discard(), io.NopCloser(nil), nil
	}

	path := Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // log file readable by owner and group
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(handler), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
