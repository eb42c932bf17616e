// Package logging carries a zap logger through request contexts.
package logging

import (
	"context"

	"go.uber.org/zap"
)

type contextKey struct{}

// NewContextWithLogger attaches logger to ctx.
func NewContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger attached to ctx, falling back to the
// process-wide logger.
func FromContext(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(contextKey{}).(*zap.Logger)
	if !ok {
		return zap.L()
	}
	return logger
}
