package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escolacli/internal/config"
	"escolacli/internal/infrastructure"
	"escolacli/internal/shared/testutil"
	api "escolacli/pkg/contracts/api/v1"
	"escolacli/pkg/contracts/events"
)

var dashboardQuery = "?" + url.Values{
	api.QueryClass:   {"2025B"},
	api.QuerySubject: {"Português"},
}.Encode()

func testOTelConfig() *infrastructure.OTelConfig {
	return &infrastructure.OTelConfig{
		ServiceName:    "escola-dashboard-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
	}
}

// newTestApp builds an application rooted in a temp dir. Pump goroutines may
// log after the test returns, so records are not forwarded to t.
func newTestApp(t *testing.T, withDataset bool, mutate ...func(*config.Config)) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()

	base := t.TempDir()
	if withDataset {
		testutil.WriteCleanDataset(t, base)
	}

	cfg := config.Default()
	cfg.Paths.BaseDir = base
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Security.RateLimit.Enabled = false
	cfg.Dashboard.RequireDataset = false
	for _, m := range mutate {
		m(cfg)
	}

	logs := testutil.NewBufferedSlogHandler(nil)
	a, err := New(cfg, slog.New(logs), WithOTelConfig(testOTelConfig()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Stop(context.Background()) })
	return a, logs
}

func do(a *Application, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func TestNew_WiresComponents(t *testing.T) {
	a, logs := newTestApp(t, true)

	assert.NotNil(t, a.Router)
	assert.NotNil(t, a.Server)
	assert.NotNil(t, a.WebSocketHub)
	assert.NotNil(t, a.Metrics)
	assert.NotNil(t, a.OTelProviders.PrometheusHTTP)
	require.NotNil(t, a.DashboardService.Dataset())
	assert.Equal(t, 5, a.DashboardService.Dataset().Summary().Students)
	assert.DirExists(t, a.Paths.ReportsDir)
	assert.DirExists(t, a.Paths.LogsDir)
	assert.True(t, logs.ContainsMessage("Dataset loaded"))
}

func TestNew_WithoutDataset(t *testing.T) {
	a, logs := newTestApp(t, false)

	assert.Nil(t, a.DashboardService.Dataset())
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Dataset not loaded")
}

func TestNew_RequireDataset(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()

	_, err := New(cfg, slog.New(testutil.NewBufferedSlogHandler(nil)), WithOTelConfig(testOTelConfig()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load dataset")
}

func TestRouter_Routes(t *testing.T) {
	a, _ := newTestApp(t, true)

	tests := []struct {
		name           string
		method         string
		target         string
		expectedStatus int
		contains       string
	}{
		{"dashboard page", http.MethodGet, "/" + dashboardQuery, http.StatusOK, "Estatísticas Rápidas"},
		{"default page", http.MethodGet, "/", http.StatusOK, "Selecione a Turma"},
		{"options", http.MethodGet, "/api/options", http.StatusOK, "2025B"},
		{"dashboard json", http.MethodGet, "/api/dashboard" + dashboardQuery, http.StatusOK, "Número de alunos na turma: 3"},
		{"invalid selection", http.MethodGet, "/api/dashboard?turma=2025B", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown class", http.MethodGet, "/api/dashboard?turma=2030Z&disciplina=Matem%C3%A1tica", http.StatusBadRequest, "2030Z"},
		{"health", http.MethodGet, "/api/health", http.StatusOK, `"status":"ok"`},
		{"ready", http.MethodGet, "/api/health/ready", http.StatusOK, "ready"},
		{"live", http.MethodGet, "/api/health/live", http.StatusOK, "alive"},
		{"version", http.MethodGet, "/api/version", http.StatusOK, "version"},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound, ""},
		{"wrong method", http.MethodDelete, "/api/options", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(a, tt.method, tt.target)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.contains != "" {
				assert.Contains(t, w.Body.String(), tt.contains)
			}
		})
	}
}

func TestRouter_SecurityHeadersAndRequestID(t *testing.T) {
	a, _ := newTestApp(t, true)

	w := do(a, http.MethodGet, "/")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "connect-src 'self' ws: wss:")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_Export(t *testing.T) {
	a, _ := newTestApp(t, true)

	w := do(a, http.MethodGet, "/api/dashboard/export"+dashboardQuery)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "dashboard_2025B_Portugu%C3%AAs.xlsx")
	// xlsx files are zip archives
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	a, _ := newTestApp(t, true)

	require.Equal(t, http.StatusOK, do(a, http.MethodGet, "/api/dashboard"+dashboardQuery).Code)

	w := do(a, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.Contains(t, w.Body.String(), "dashboard_views_total")
}

func TestRouter_NoDataset(t *testing.T) {
	a, _ := newTestApp(t, false)

	assert.Equal(t, http.StatusServiceUnavailable, do(a, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(a, http.MethodGet, "/api/options").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(a, http.MethodGet, "/api/health/ready").Code)

	// The cleaner runs, then the dataset is reloaded
	testutil.WriteCleanDataset(t, a.Config.Paths.BaseDir)
	w := do(a, http.MethodPost, "/api/dataset/reload")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.ReloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Summary.Students)
	assert.Equal(t, http.StatusOK, do(a, http.MethodGet, "/api/options").Code)
}

func TestRouter_RateLimit(t *testing.T) {
	a, _ := newTestApp(t, true, func(cfg *config.Config) {
		cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.5, Burst: 1}
	})

	assert.Equal(t, http.StatusOK, do(a, http.MethodGet, "/api/health/live").Code)

	w := do(a, http.MethodGet, "/api/health/live")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}

func TestApplication_StartStop(t *testing.T) {
	a, _ := newTestApp(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx, cancel))

	_, port, err := net.SplitHostPort(a.Addr())
	require.NoError(t, err)
	host := net.JoinHostPort("127.0.0.1", port)

	resp, err := http.Get("http://" + host + "/api/health/live")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A connected page is told about reloads
	conn, _, err := gorillaws.DefaultDialer.Dial("ws://"+host+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, events.MessageTypeConnect, msg.Type)

	reload, err := http.Post("http://"+host+"/api/dataset/reload", "application/json", nil)
	require.NoError(t, err)
	reload.Body.Close()
	assert.Equal(t, http.StatusOK, reload.StatusCode)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, events.MessageTypeDatasetReloaded, msg.Type)

	require.NoError(t, a.Stop(context.Background()))
	assert.NoError(t, a.Stop(context.Background()))

	_, err = http.Get("http://" + host + "/api/health/live")
	assert.Error(t, err)
}

func TestPerformStartupHealthCheck(t *testing.T) {
	a, _ := newTestApp(t, false)

	err := a.performStartupHealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.CleanStudentsFile)

	testutil.WriteCleanDataset(t, a.Config.Paths.BaseDir)
	assert.NoError(t, a.performStartupHealthCheck(context.Background()))
}
