// Package logging builds the slog logger shared by every component.
// The TUI owns the terminal, so logs go to a file under the storage base dir.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// New 创建写入 <dir>/logs/lenai.log 的 logger；失败时回退到 stderr
// New opens <dir>/logs/lenai.log for appending and returns a text logger over it.
// The returned closer must be called on shutdown. On failure it falls back to stderr.
func New(dir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return stderrLogger(level), nopCloser{}, fmt.Errorf("log dir is empty")
	}
	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return stderrLogger(level), nopCloser{}, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logsDir, "lenai.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return stderrLogger(level), nopCloser{}, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps "debug"/"info"/"warn"/"error" to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
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

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

func stderrLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
