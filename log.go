package ota

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-logr/logr"
)

// NewLogger returns a logger writing text to w. At verbosity 0 only errors
// are logged; each increment lets more through.
func NewLogger(w io.Writer, verbosity int) logr.Logger {
	return logr.FromSlogHandler(
		slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.Level(int(slog.LevelError) - 4*verbosity),
		}),
	)
}

func WithLogger(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

func LoggerFrom(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}
