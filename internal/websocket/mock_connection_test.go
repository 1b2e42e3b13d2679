package websocket

import (
	"errors"
	"sync"
	"time"
)

// mockConnection is an in-memory Connection. ReadMessage serves queued
// inbound frames and then blocks until Close.
type mockConnection struct {
	mu sync.Mutex

	written  []mockMessage
	inbound  chan mockMessage
	closed   chan struct{}
	closeErr error
	once     sync.Once

	writeErr      error
	readLimit     int64
	readDeadline  time.Time
	writeDeadline time.Time
	pongHandler   func(string) error
	remoteAddress string
}

type mockMessage struct {
	Type int
	Data []byte
}

func newMockConnection() *mockConnection {
	return &mockConnection{
		inbound:       make(chan mockMessage, 16),
		closed:        make(chan struct{}),
		remoteAddress: "127.0.0.1:9999",
	}
}

func (m *mockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, mockMessage{Type: messageType, Data: append([]byte(nil), data...)})
	return nil
}

func (m *mockConnection) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.inbound:
		return msg.Type, msg.Data, nil
	case <-m.closed:
		return 0, nil, errors.New("connection closed")
	}
}

func (m *mockConnection) Close() error {
	m.once.Do(func() { close(m.closed) })
	return m.closeErr
}

func (m *mockConnection) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readDeadline = t
	return nil
}

func (m *mockConnection) SetWriteDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeDeadline = t
	return nil
}

func (m *mockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readLimit = limit
}

func (m *mockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pongHandler = h
}

func (m *mockConnection) RemoteAddr() string {
	return m.remoteAddress
}

func (m *mockConnection) isClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

func (m *mockConnection) messages() []mockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mockMessage(nil), m.written...)
}

func (m *mockConnection) messagesOfType(messageType int) []mockMessage {
	var out []mockMessage
	for _, msg := range m.messages() {
		if msg.Type == messageType {
			out = append(out, msg)
		}
	}
	return out
}
