// Package logctx carries the zerolog logger through context values so that
// library code doesn't depend on a global logger.
package logctx

import (
	"context"

	"github.com/rs/zerolog"
)

type logKey struct{}

// Log returns the logger attached to the context.
func Log(ctx context.Context) *zerolog.Logger {
	logger := ctx.Value(logKey{})
	if logger == nil {
		nop := zerolog.Nop()
		return &nop
	}

	return logger.(*zerolog.Logger)
}

// WithLogger attaches the given logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}
