package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "escolacli/internal/errors"
)

// maxClientLogBytes bounds the body of a client log entry
const maxClientLogBytes = 16 << 10

// ClientLogHandler records log entries sent by the dashboard page
type ClientLogHandler struct {
	validator    StructValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(validator StructValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ClientLogHandler {
	return &ClientLogHandler{
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "client_log")),
	}
}

// LogRequest represents a client log entry
type LogRequest struct {
	Level   string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=1024"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty" validate:"max=128"`
}

// Handle handles POST /api/logs
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClientLogBytes)).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	attrs := []slog.Attr{slog.String("client_source", req.Source)}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}

	h.logger.LogAttrs(r.Context(), clientLevel(req.Level), req.Message, attrs...)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{"success": true})
}

func clientLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
