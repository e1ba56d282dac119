package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewVaultLogger builds the process logger: human-readable text on stderr plus a
// rotating JSON log inside the vault (logs/app.log, 1 MiB, 3 backups), matching
// the vault's append-on-ingest logging contract.
func NewVaultLogger(logsDir string, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	if logsDir == "" {
		return slog.New(stderrHandler)
	}

	fileHandler := slog.NewJSONHandler(&lumberjack.Logger{
		Filename:   filepath.Join(logsDir, "app.log"),
		MaxSize:    1,
		MaxBackups: 3,
	}, &slog.HandlerOptions{Level: level})

	return slog.New(fanoutHandler{handlers: []slog.Handler{stderrHandler, fileHandler}})
}

// fanoutHandler duplicates records to every wrapped handler. Errors from one
// sink do not stop delivery to the others.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h.handlers {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, hh := range h.handlers {
		if !hh.Enabled(ctx, record.Level) {
			continue
		}
		if err := hh.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		next[i] = hh.WithAttrs(attrs)
	}
	return fanoutHandler{handlers: next}
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		next[i] = hh.WithGroup(name)
	}
	return fanoutHandler{handlers: next}
}
