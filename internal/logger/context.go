package logger

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

func AddToContext(ctx context.Context, ctxLogger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, ctxLogger)
}

// GetFromContext returns the run logger, or the default logger when the
// context carries none.
func GetFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// With stores a logger enriched with args in the context.
func With(ctx context.Context, args ...any) context.Context {
	return AddToContext(ctx, GetFromContext(ctx).With(args...))
}
