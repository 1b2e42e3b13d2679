package http

import (
	"net/http"

	apierrors "escolacli/internal/errors"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	scrape       http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the exporter's scrape handler. A nil handler
// means metrics are disabled.
func NewMetricsHandler(scrape http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{scrape: scrape, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.scrape == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("metrics"))
		return
	}
	h.scrape.ServeHTTP(w, r)
}
