package http

import (
	"log/slog"
	"net/http"

	gorillaws "github.com/gorilla/websocket"

	"escolacli/internal/websocket"
)

// WebSocketHandler upgrades /ws requests and attaches them to the hub
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader *gorillaws.Upgrader
	opts     websocket.ClientOptions
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub, upgrader *gorillaws.Upgrader, opts websocket.ClientOptions, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		upgrader: upgrader,
		opts:     opts,
		logger:   logger.With(slog.String("handler", "websocket")),
	}
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The upgrader has already answered the client when this fails
	if err := websocket.ServeWS(h.hub, h.upgrader, w, r, h.opts); err != nil {
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")),
			slog.String("remote_addr", r.RemoteAddr))
	}
}
