package main

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jingkaihe/netmock/internal/errx"
	"github.com/jingkaihe/netmock/pkg/api"
	"github.com/jingkaihe/netmock/pkg/logging"
)

func newLogger(cfg *api.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseSlogLevel(cfg.GetLogLevel())
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.GetLogFormat())) {
	case "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, errx.With(ErrInitLogger, ": unknown logging.format %q", cfg.GetLogFormat())
	}
	return slog.New(h), nil
}

func parseSlogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errx.With(ErrInitLogger, ": unknown logging.level %q", s)
	}
}

// newEventEmitter returns nil when no events file is configured. The file
// is rotated once it reaches events_max_size_mb.
func newEventEmitter(cfg *api.LoggingConfig, suite string) *logging.Emitter {
	if cfg == nil || strings.TrimSpace(cfg.EventsFile) == "" {
		return nil
	}
	out := &lumberjack.Logger{
		Filename:   cfg.EventsFile,
		MaxSize:    cfg.GetEventsMaxSizeMB(),
		MaxBackups: 3,
	}
	return logging.NewEmitter(logging.EmitterConfig{Suite: suite}, logging.NewJSONLWriterTo(out))
}
