package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"escolacli/internal/infrastructure"
	"escolacli/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for all clients
	broadcast chan outbound

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu         sync.RWMutex
	baseLogger *slog.Logger
	logger     *slog.Logger
	metrics    *OTelMetrics

	quit    chan struct{}
	done    chan struct{}
	running bool
}

type outbound struct {
	messageType string
	payload     []byte
	traceID     string
}

// NewHub creates a new Hub instance. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *OTelMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		baseLogger: logger,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start starts the hub's main loop
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run runs the hub's main loop until Stop is called
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client, "closed")

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.RecordConnection(ctx)
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	payload, err := encode(string(events.MessageTypeConnect), map[string]interface{}{
		"status":    "connected",
		"client_id": client.id,
	}, client.traceID)
	if err != nil {
		return
	}

	select {
	case client.send <- payload:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt), reason)
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

func (h *Hub) fanOut(msg outbound) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	delivered, dropped := 0, 0
	for _, client := range clients {
		select {
		case client.send <- msg.payload:
			delivered++
		default:
			// Client's send queue is full, drop it
			dropped++
			h.removeClient(client, "slow_consumer")
		}
	}

	ctx := context.Background()
	if msg.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, msg.traceID)
	}
	h.metrics.RecordBroadcast(ctx, msg.messageType, delivered, dropped)
	h.logger.DebugContext(ctx, "Broadcast delivered",
		slog.String("message_type", msg.messageType),
		slog.Int("delivered", delivered),
		slog.Int("dropped", dropped))
}

// Broadcast sends a message of messageType to all connected clients
func (h *Hub) Broadcast(messageType string, data interface{}) {
	h.BroadcastWithTrace(messageType, data, "")
}

// BroadcastWithTrace sends a message carrying traceID to all connected clients.
// It does not block once the hub has stopped.
func (h *Hub) BroadcastWithTrace(messageType string, data interface{}, traceID string) {
	payload, err := encode(messageType, data, traceID)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("message_type", messageType),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- outbound{messageType: messageType, payload: payload, traceID: traceID}:
	case <-h.quit:
	}
}

func encode(messageType string, data interface{}, traceID string) ([]byte, error) {
	return json.Marshal(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.NewString(),
			Type:      events.MessageType(messageType),
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	})
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop gracefully stops the hub and closes every client queue
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
