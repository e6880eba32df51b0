// Package logging configures the process-wide slog logger.
//
// Initialize once at startup, then use slog directly:
//
//	logging.Init(config.AppConfig.Logging)
//	slog.Info("Server started", "port", port)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gewnthar/airroutes/config"
)

// ParseLevel maps a config level name onto a slog level. Unknown names
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing text or JSON records to w.
func NewLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", "airroutes")
}

// Init installs the configured logger as the slog default.
func Init(cfg config.LoggingConfig) {
	InitWithWriter(os.Stdout, cfg)
}

// InitWithWriter is Init with a custom writer (for testing).
func InitWithWriter(w io.Writer, cfg config.LoggingConfig) {
	slog.SetDefault(NewLogger(w, cfg))
}
