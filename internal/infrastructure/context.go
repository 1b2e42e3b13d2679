package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID returns a random UUID v4 trace id
func GenerateTraceID() string {
	return uuid.NewString()
}

// EnsureTraceID returns ctx with a trace id, generating one when none is set.
// CLI runs call it once so that every log line of a run shares the id.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// BindTraceID binds the trace id of ctx to logger, for call sites that log
// without a context
func BindTraceID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		return logger.With(slog.String("trace_id", traceID))
	}
	return logger
}

// WithComponent tags logger with a component name. A nil logger means the
// process logger.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}
