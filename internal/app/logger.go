package app

import (
	"log/slog"
	"os"
)

// NewLogger returns the process logger. Production runs emit JSON for log
// shipping; everything else gets text with source locations.
func NewLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	}
	return slog.New(handler).With(slog.String("service", "capria"))
}
