package log

import "context"

type ctxLoggerKey struct{}

// AddToContext stores the logger in the returned context
func AddToContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, l)
}

// GetFromContext returns the logger stored in ctx or the default logger
func GetFromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return Default()
	}
	if l, ok := ctx.Value(ctxLoggerKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Default()
}
