package logging

import (
	"context"
	"log/slog"
)

// Attribute keys shared by every component so log queries can join on them.
const (
	KeyRequestID     = "request_id"
	KeyCorrelationID = "correlation_id"
	KeyTraceID       = "trace_id"
	KeySubject       = "subject"
	KeySlotID        = "slot_id"
	KeyViewID        = "view_id"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

func loggerIn(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}

	logger, ok := ctx.Value(ctxKey{}).(*slog.Logger)

	return logger, ok && logger != nil
}

// FromContext returns the request logger, or the process default.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, nil)
}

// FromContextOr returns the logger stored in ctx, or fallback when there is
// none. A nil fallback means the process default.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := loggerIn(ctx); ok {
		return logger
	}

	if fallback != nil {
		return fallback
	}

	return defaultLogger
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// With returns ctx whose logger carries attrs in addition to its own.
func With(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}

	return WithContext(ctx, FromContext(ctx).With(args...))
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return With(ctx, slog.String(KeyRequestID, requestID))
}

func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return With(ctx, slog.String(KeyCorrelationID, correlationID))
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return With(ctx, slog.String(KeyTraceID, traceID))
}

// WithSubject tags the logger with the authenticated editor.
func WithSubject(ctx context.Context, subject string) context.Context {
	return With(ctx, slog.String(KeySubject, subject))
}

// SetDefault replaces the fallback logger and the slog default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
