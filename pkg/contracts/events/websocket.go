// Package events contains event contract definitions for WebSocket
// notifications pushed by the dashboard server.
package events

import (
	"time"

	"escolacli/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset messages
	MessageTypeDatasetReloaded MessageType = "dataset:reloaded"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetReloaded is the payload of a dataset:reloaded message
type DatasetReloaded struct {
	Summary domain.DatasetSummary `json:"summary"`
	Options domain.Options        `json:"options"`
}
