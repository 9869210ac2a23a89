package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/young626-jang/ltv-flask/internal/config"
)

// New builds a slog.Logger configured according to the provided logging config.
func New(cfg config.LoggingConfig) *slog.Logger {
	return NewWithWriter(cfg, output(cfg.Output))
}

// NewWithWriter builds a logger that writes to w regardless of cfg.Output.
func NewWithWriter(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}
	if cfg.IncludeCaller {
		opts.ReplaceAttr = trimSource
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// trimSource keeps the last directory and file name of the caller, so
// "internal/registry/parse.go:88" rather than an absolute build path.
func trimSource(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.SourceKey {
		return a
	}
	src, ok := a.Value.Any().(*slog.Source)
	if !ok || src == nil {
		return a
	}
	dir, file := filepath.Split(src.File)
	short := *src
	short.File = filepath.Join(filepath.Base(dir), file)
	short.Function = ""
	return slog.Any(slog.SourceKey, &short)
}

func output(name string) io.Writer {
	if strings.EqualFold(strings.TrimSpace(name), "stderr") {
		return os.Stderr
	}
	return os.Stdout
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
