package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// NewContext stores l in ctx. Request-scoped code reads it back with From.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// With derives a logger from the one in ctx carrying the extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	return NewContext(ctx, From(ctx).With(args...))
}

// From falls back to the process logger when ctx carries none.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return LoggerWrapper()
}
