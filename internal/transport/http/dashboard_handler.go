package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "escolacli/internal/errors"
	api "escolacli/pkg/contracts/api/v1"
	"escolacli/pkg/contracts/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves the dashboard JSON API
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    StructValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator StructValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "dashboard")),
	}
}

// Routes returns the dashboard API routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/options", h.GetOptions)
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/dashboard/export", h.ExportDashboard)
	r.Post("/dataset/reload", h.ReloadDataset)
	return r
}

// GetOptions handles GET /api/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// GetDashboard handles GET /api/dashboard?turma=&disciplina=
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}

	dash, err := h.service.Dashboard(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dash)
}

// ExportDashboard handles GET /api/dashboard/export?turma=&disciplina=
func (h *DashboardHandler) ExportDashboard(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}

	// Buffer so a failed export still yields a problem document
	var buf bytes.Buffer
	name, err := h.service.Export(r.Context(), sel, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(name)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write export", slog.String("error", err.Error()))
	}
}

// ReloadDataset handles POST /api/dataset/reload
func (h *DashboardHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.ReloadResponse{Summary: payload.Summary, Options: payload.Options})
}

// selection reads and validates the turma/disciplina query parameters
func (h *DashboardHandler) selection(w http.ResponseWriter, r *http.Request) (domain.Selection, bool) {
	req := api.SelectionFromQuery(r.URL.Query())
	if err := h.validator.ValidateStruct(req); err != nil {
		h.logger.DebugContext(r.Context(), "Invalid selection",
			slog.String("turma", req.Class),
			slog.String("disciplina", req.Subject))
		h.errorHandler.HandleError(w, r, err)
		return domain.Selection{}, false
	}
	return req.ToDomain(), true
}
