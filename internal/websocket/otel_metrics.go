package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics provides OpenTelemetry metrics for WebSocket operations.
// A nil *OTelMetrics records nothing.
type OTelMetrics struct {
	connectionsTotal   metric.Int64Counter
	connectionsActive  metric.Int64UpDownCounter
	connectionDuration metric.Float64Histogram
	messagesTotal      metric.Int64Counter
	messageBytes       metric.Int64Counter
	droppedMessages    metric.Int64Counter
	broadcasts         metric.Int64Counter
}

// NewOTelMetrics creates the WebSocket instruments on meter
func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	m := &OTelMetrics{}
	var err error

	if m.connectionsTotal, err = meter.Int64Counter(
		"websocket_connections_total",
		metric.WithDescription("Total number of WebSocket connections"),
	); err != nil {
		return nil, err
	}

	if m.connectionsActive, err = meter.Int64UpDownCounter(
		"websocket_connections_active",
		metric.WithDescription("Number of active WebSocket connections"),
	); err != nil {
		return nil, err
	}

	if m.connectionDuration, err = meter.Float64Histogram(
		"websocket_connection_duration_seconds",
		metric.WithDescription("Duration of WebSocket connections"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.messagesTotal, err = meter.Int64Counter(
		"websocket_messages_total",
		metric.WithDescription("Total number of WebSocket messages"),
	); err != nil {
		return nil, err
	}

	if m.messageBytes, err = meter.Int64Counter(
		"websocket_message_bytes_total",
		metric.WithDescription("Total bytes of WebSocket messages"),
	); err != nil {
		return nil, err
	}

	if m.droppedMessages, err = meter.Int64Counter(
		"websocket_dropped_messages_total",
		metric.WithDescription("Messages dropped because a client queue was full"),
	); err != nil {
		return nil, err
	}

	if m.broadcasts, err = meter.Int64Counter(
		"websocket_broadcasts_total",
		metric.WithDescription("Total number of broadcast operations"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordConnection records a new client
func (m *OTelMetrics) RecordConnection(ctx context.Context) {
	if m == nil {
		return
	}
	m.connectionsTotal.Add(ctx, 1)
	m.connectionsActive.Add(ctx, 1)
}

// RecordDisconnection records a client leaving after duration
func (m *OTelMetrics) RecordDisconnection(ctx context.Context, duration time.Duration, reason string) {
	if m == nil {
		return
	}
	m.connectionsActive.Add(ctx, -1)
	m.connectionDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordMessage records one message in direction "sent" or "received"
func (m *OTelMetrics) RecordMessage(ctx context.Context, direction string, size int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("direction", direction))
	m.messagesTotal.Add(ctx, 1, attrs)
	m.messageBytes.Add(ctx, int64(size), attrs)
}

// RecordBroadcast records a broadcast of messageType
func (m *OTelMetrics) RecordBroadcast(ctx context.Context, messageType string, delivered, dropped int) {
	if m == nil {
		return
	}
	m.broadcasts.Add(ctx, 1, metric.WithAttributes(attribute.String("message_type", messageType)))
	m.messagesTotal.Add(ctx, int64(delivered), metric.WithAttributes(attribute.String("direction", "sent")))
	if dropped > 0 {
		m.droppedMessages.Add(ctx, int64(dropped))
	}
}
