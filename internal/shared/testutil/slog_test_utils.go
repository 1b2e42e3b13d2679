package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord represents a captured log record for testing
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// recordStore is shared by a handler and the handlers derived from it
type recordStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// BufferedSlogHandler captures log records for testing
type BufferedSlogHandler struct {
	store *recordStore
	attrs []slog.Attr
	group string
	t     *testing.T
}

// NewBufferedSlogHandler creates a new buffered handler for testing
func NewBufferedSlogHandler(t *testing.T) *BufferedSlogHandler {
	return &BufferedSlogHandler{
		store: &recordStore{},
		t:     t,
	}
}

// Handle implements slog.Handler
func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		attrs[key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}

	return nil
}

// Enabled implements slog.Handler
func (h *BufferedSlogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler
func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &BufferedSlogHandler{store: h.store, attrs: merged, group: h.group, t: h.t}
}

// WithGroup implements slog.Handler
func (h *BufferedSlogHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &BufferedSlogHandler{store: h.store, attrs: h.attrs, group: group, t: h.t}
}

// GetRecords returns all captured log records
func (h *BufferedSlogHandler) GetRecords() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	records := make([]LogRecord, len(h.store.records))
	copy(records, h.store.records)
	return records
}

// GetRecordsByLevel returns log records filtered by level
func (h *BufferedSlogHandler) GetRecordsByLevel(level slog.Level) []LogRecord {
	var filtered []LogRecord
	for _, r := range h.GetRecords() {
		if r.Level == level {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ContainsMessage checks if any log record contains the given message
func (h *BufferedSlogHandler) ContainsMessage(message string) bool {
	for _, r := range h.GetRecords() {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ContainsAttr checks if any log record contains the given attribute
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.GetRecords() {
		if val, ok := r.Attrs[key]; ok && val == value {
			return true
		}
	}
	return false
}

// Clear removes all captured records
func (h *BufferedSlogHandler) Clear() {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = h.store.records[:0]
}

// Count returns the number of captured records
func (h *BufferedSlogHandler) Count() int {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return len(h.store.records)
}

// NewTestLogger creates a logger with a buffered handler for testing
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	handler := NewBufferedSlogHandler(t)
	return slog.New(handler), handler
}

// AssertLogContains checks if the handler contains a log with the given message
func AssertLogContains(t *testing.T, handler *BufferedSlogHandler, level slog.Level, message string) {
	t.Helper()

	records := handler.GetRecordsByLevel(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}

	t.Errorf("Expected log message not found at level %s: %q", level, message)
	for _, r := range records {
		t.Logf("  - %s", r.Message)
	}
}

// AssertLogAttr checks if the handler contains a log with the given attribute
func AssertLogAttr(t *testing.T, handler *BufferedSlogHandler, key string, expectedValue any) {
	t.Helper()

	if !handler.ContainsAttr(key, expectedValue) {
		t.Errorf("Expected log attribute not found: %s=%v", key, expectedValue)
		for _, r := range handler.GetRecords() {
			t.Logf("  - %s: %v", r.Message, r.Attrs)
		}
	}
}

// AssertNoErrors checks that no error-level logs were recorded
func AssertNoErrors(t *testing.T, handler *BufferedSlogHandler) {
	t.Helper()

	for _, r := range handler.GetRecordsByLevel(slog.LevelError) {
		t.Errorf("Unexpected error log: %s: %v", r.Message, r.Attrs)
	}
}
