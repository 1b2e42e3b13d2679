package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"

	"escolacli/internal/config"
)

var (
	// globalLogger holds the application-wide logger instance
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once
	// globalLogFile holds the open log file for cleanup
	globalLogFile *os.File
	logFileMu     sync.Mutex

	// stdout is swapped in tests
	stdout io.Writer = os.Stdout
)

// contextKey is a type for context keys
type contextKey string

const (
	// TraceIDContextKey is the key for storing trace ID in context
	TraceIDContextKey contextKey = "trace_id"
)

// InitializeLogger creates and configures the global slog logger instance.
// It should be called once during startup; later calls return the first logger.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	globalLoggerOnce.Do(func() {
		var file *os.File
		globalLogger, file, err = createLogger(cfg)
		if err != nil {
			return
		}
		logFileMu.Lock()
		globalLogFile = file
		logFileMu.Unlock()
		slog.SetDefault(globalLogger)
	})
	return globalLogger, err
}

// GetLogger returns the global logger instance.
// If not initialized, returns the default slog logger.
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// createLogger builds a JSON logger writing to stdout, a file, or both
func createLogger(cfg config.LoggingConfig) (*slog.Logger, *os.File, error) {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     parseLogLevel(cfg.Level),
	}

	var (
		output io.Writer
		file   *os.File
		err    error
	)

	switch strings.ToLower(cfg.Output) {
	case "file":
		file, err = openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	case "both":
		file, err = openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = io.MultiWriter(stdout, file)
	default:
		output = stdout
	}

	handler := slog.NewJSONHandler(output, opts)
	return slog.New(&traceHandler{Handler: handler}), file, nil
}

// traceHandler wraps a slog.Handler to inject trace_id from context
type traceHandler struct {
	slog.Handler
	// hasTrace is set once a trace_id attribute was bound with With
	hasTrace bool
}

// Handle adds trace_id to the record if present in context
func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.hasTrace {
		if traceID := GetTraceID(ctx); traceID != "" {
			r.AddAttrs(slog.String("trace_id", traceID))
		}
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs returns a new Handler with additional attributes
func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hasTrace := h.hasTrace
	for _, a := range attrs {
		if a.Key == "trace_id" {
			hasTrace = true
		}
	}
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs), hasTrace: hasTrace}
}

// WithGroup returns a new Handler with the given group name
func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name), hasTrace: h.hasTrace}
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context, falling back to the
// request ID set by the HTTP middleware
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return middleware.GetReqID(ctx)
}

// CloseLogFile closes the global log file if open.
// This should be called during graceful shutdown or in tests.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if globalLogFile != nil {
		err := globalLogFile.Close()
		globalLogFile = nil
		return err
	}
	return nil
}

// ResetLoggerForTesting resets the global logger state.
// This should only be called in tests.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	globalLogger = nil
	globalLoggerOnce = sync.Once{}
}

// openLogFile opens or creates a log file in append mode
func openLogFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	return file, nil
}
