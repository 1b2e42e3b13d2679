package websocket

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"escolacli/internal/config"
	"escolacli/internal/infrastructure"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512

	sendBufferSize = 256
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// ClientOptions holds the keepalive timings of a client
type ClientOptions struct {
	PingPeriod time.Duration
	PongWait   time.Duration
}

// OptionsFromConfig derives client keepalive timings from cfg.
// The ping period is clamped below the pong wait.
func OptionsFromConfig(cfg config.WebSocketConfig) ClientOptions {
	opts := ClientOptions{PingPeriod: cfg.PingPeriod, PongWait: cfg.PongWait}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}
	return opts
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub *Hub

	// The websocket connection
	conn Connection

	// Buffered channel of outbound messages
	send chan []byte

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time
	opts        ClientOptions

	logger *slog.Logger

	messagesSent     int64
	messagesReceived int64
	bytesSent        int64
	bytesReceived    int64
}

// NewClient creates a client for conn attached to hub
func NewClient(hub *Hub, conn Connection, traceID string, logger *slog.Logger, opts ClientOptions) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	if traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		opts:        OptionsFromConfig(config.WebSocketConfig{PingPeriod: opts.PingPeriod, PongWait: opts.PongWait}),
		logger:      logger,
	}
}

// ID returns the client identifier
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// ReadPump pumps messages from the websocket connection to the hub.
// Inbound messages other than heartbeats are ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.context(), "WebSocket client disconnected (readPump)",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived),
			slog.Int64("bytes_received", c.bytesReceived))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))

		c.messagesReceived++
		c.bytesReceived += int64(len(message))
		c.hub.metrics.RecordMessage(c.context(), "received", len(message))

		if string(message) == `{"type":"heartbeat"}` {
			c.logger.Debug("Heartbeat received")
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.InfoContext(c.context(), "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent),
			slog.Int64("bytes_sent", c.bytesSent))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(message); err != nil {
				return
			}

			// Drain queued messages as separate frames
			n := len(c.send)
			for i := 0; i < n; i++ {
				msg, ok := <-c.send
				if !ok {
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.write(msg); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

func (c *Client) write(message []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.ErrorContext(c.context(), "Error writing message to WebSocket",
			slog.String("error", err.Error()))
		return err
	}
	c.messagesSent++
	c.bytesSent += int64(len(message))
	c.hub.metrics.RecordMessage(c.context(), "sent", len(message))
	return nil
}

// gorillaConn adapts *websocket.Conn to Connection
type gorillaConn struct {
	*websocket.Conn
}

func (g gorillaConn) RemoteAddr() string {
	if addr := g.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// WrapConn adapts a gorilla connection to Connection
func WrapConn(conn *websocket.Conn) Connection {
	return gorillaConn{Conn: conn}
}

// NewUpgrader builds an upgrader that accepts same-host requests and the given origins.
// A "*" entry accepts every origin.
func NewUpgrader(cfg config.WebSocketConfig, allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
}

// ServeWS upgrades the request and attaches the connection to hub
func ServeWS(hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, opts ClientOptions) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(hub, WrapConn(conn), infrastructure.GetTraceID(r.Context()), hub.baseLogger, opts)
	hub.Register(client)

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines
	go client.WritePump()
	go client.ReadPump()
	return nil
}
