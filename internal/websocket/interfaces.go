package websocket

import (
	"time"
)

// Connection defines the interface for WebSocket connections
// This allows for proper mocking in tests
type Connection interface {
	// WriteMessage writes a message with the given message type and payload
	WriteMessage(messageType int, data []byte) error

	// ReadMessage reads a message from the connection
	ReadMessage() (messageType int, p []byte, err error)

	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)

	// RemoteAddr returns the remote network address
	RemoteAddr() string
}

// Broadcaster sends typed notifications to every connected client
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
	ClientCount() int
}
