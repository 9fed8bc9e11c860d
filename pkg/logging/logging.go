// Package logging builds the slog loggers used across tinybc.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/thomasrohde/tinybc/pkg/config"
)

// ServiceName is attached to every record as the "service" attribute.
const ServiceName = "tinybc"

// ParseLevel maps a level name to a slog level. Unknown names mean warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// New creates a logger writing to w in the configured format and level.
// A nil writer discards everything.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		return Discard()
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", ServiceName))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
