package http

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	apierrors "escolacli/internal/errors"
	"escolacli/internal/services"
	api "escolacli/pkg/contracts/api/v1"
	"escolacli/pkg/contracts/domain"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

const (
	msgDatasetUnavailable = "Os dados limpos ainda não foram carregados. Execute o limpador e recarregue o conjunto de dados."
	msgNoSelection        = "Não há turmas ou disciplinas disponíveis nos dados limpos."
	msgInvalidSelection   = "Seleção inválida: escolha uma turma e uma disciplina da lista."
	msgUnknownSelection   = "A turma ou disciplina selecionada não existe nos dados."
	msgInternal           = "Não foi possível montar o dashboard."
)

var templateFuncs = template.FuncMap{
	"add": func(a, b float64) float64 { return a + b },
	"sub": func(a, b float64) float64 { return a - b },
	"mid": func(a, b float64) float64 { return (a + b) / 2 },
}

// pageData is the view model rendered by the dashboard template
type pageData struct {
	Options    domain.Options
	Selection  domain.Selection
	Dashboard  *domain.Dashboard
	Error      string
	ExportURL  string
	Grades     barSVG
	Attendance barSVG
	Scatter    *scatterSVG
}

// PageHandler renders the HTML dashboard
type PageHandler struct {
	service   DashboardServiceInterface
	validator StructValidator
	tmpl      *template.Template
	logger    *slog.Logger
}

// NewPageHandler parses the dashboard template and creates a page handler
func NewPageHandler(service DashboardServiceInterface, validator StructValidator, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.New("dashboard.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		service:   service,
		validator: validator,
		tmpl:      tmpl,
		logger:    logger.With(slog.String("handler", "page")),
	}, nil
}

// ServeDashboard handles GET /?turma=&disciplina=
func (h *PageHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := h.service.Options(ctx)
	if err != nil {
		h.fail(w, r, pageData{}, err)
		return
	}
	data := pageData{Options: opts}

	req := api.SelectionFromQuery(r.URL.Query())
	if req.Class == "" || req.Subject == "" {
		def, err := h.service.DefaultSelection(ctx)
		if err != nil {
			h.fail(w, r, data, err)
			return
		}
		if req.Class == "" {
			req.Class = def.Class
		}
		if req.Subject == "" {
			req.Subject = def.Subject
		}
	}
	data.Selection = req.ToDomain()

	if err := h.validator.ValidateStruct(req); err != nil {
		h.fail(w, r, data, err)
		return
	}

	dash, err := h.service.Dashboard(ctx, data.Selection)
	if err != nil {
		h.fail(w, r, data, err)
		return
	}

	data.Dashboard = &dash
	data.Grades = newBarSVG(dash.GradesChart, gradeScale)
	data.Attendance = newBarSVG(dash.AttendanceChart, attendanceScale)
	data.Scatter = newScatterSVG(dash.Clustering)
	data.ExportURL = exportURL(data.Selection)

	h.render(ctx, w, http.StatusOK, data)
}

// fail renders the page with a message matching the error
func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, data pageData, err error) {
	status, msg := pageError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Dashboard page failed",
			slog.String("error", err.Error()),
			slog.Int("status", status))
	} else {
		h.logger.DebugContext(r.Context(), "Dashboard page rejected selection",
			slog.String("error", err.Error()))
	}
	data.Error = msg
	h.render(r.Context(), w, status, data)
}

func (h *PageHandler) render(ctx context.Context, w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(ctx, "Failed to render dashboard template", slog.String("error", err.Error()))
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func pageError(err error) (int, string) {
	if errors.Is(err, services.ErrNoSelection) {
		return http.StatusOK, msgNoSelection
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusServiceUnavailable:
			return apiErr.StatusCode, msgDatasetUnavailable
		case apiErr.StatusCode == http.StatusBadRequest:
			return apiErr.StatusCode, msgInvalidSelection
		}
	}

	if apierrors.IsType(err, apierrors.ErrTypeValidation) {
		return http.StatusBadRequest, msgUnknownSelection
	}
	if apierrors.IsType(err, apierrors.ErrTypeNotFound) {
		return http.StatusNotFound, msgUnknownSelection
	}
	return http.StatusInternalServerError, msgInternal
}

func exportURL(sel domain.Selection) string {
	q := url.Values{}
	q.Set(api.QueryClass, sel.Class)
	q.Set(api.QuerySubject, sel.Subject)
	return "/api/dashboard/export?" + q.Encode()
}
