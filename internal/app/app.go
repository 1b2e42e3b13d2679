package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"escolacli/internal/config"
	apierrors "escolacli/internal/errors"
	"escolacli/internal/infrastructure"
	customMiddleware "escolacli/internal/middleware"
	"escolacli/internal/services"
	handlers "escolacli/internal/transport/http"
	ws "escolacli/internal/websocket"
	"escolacli/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Paths            *config.Paths
	Router           *chi.Mux
	Server           *http.Server
	WebSocketHub     *ws.Hub
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.DashboardMetrics

	otelConfig     *infrastructure.OTelConfig
	tracer         trace.Tracer
	meter          metric.Meter
	runtimeMetrics metric.Registration
	startTime      time.Time

	mu       sync.Mutex
	listener net.Listener
	stopped  bool
}

// Option customizes an Application before its services are built
type Option func(*Application)

// WithOTelConfig replaces the default OpenTelemetry configuration
func WithOTelConfig(cfg *infrastructure.OTelConfig) Option {
	return func(a *Application) {
		a.otelConfig = cfg
	}
}

// NewApplication loads configuration from the environment and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component of the dashboard server from cfg
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	a := &Application{
		Config:     cfg,
		Logger:     logger,
		otelConfig: infrastructure.DefaultOTelConfig(),
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()))

	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)
	a.Paths = paths

	if err := a.initializeTelemetry(); err != nil {
		return nil, err
	}
	if err := a.initializeServices(); err != nil {
		_ = a.OTelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := a.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	a.createServer()

	return a, nil
}

// initializeTelemetry creates providers and the application instruments
func (a *Application) initializeTelemetry() error {
	providers, err := infrastructure.InitializeOTel(a.otelConfig, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = providers

	a.tracer = providers.Tracer
	if a.tracer == nil {
		a.tracer = otel.Tracer(infrastructure.MeterName)
	}
	a.meter = providers.Meter
	if a.meter == nil {
		a.meter = otel.Meter(infrastructure.MeterName)
	}

	metrics, err := infrastructure.CreateDashboardMetrics(a.meter)
	if err != nil {
		return fmt.Errorf("failed to create dashboard metrics: %w", err)
	}
	a.Metrics = metrics

	reg, err := infrastructure.RegisterRuntimeMetrics(a.meter, a.startTime)
	if err != nil {
		return fmt.Errorf("failed to register runtime metrics: %w", err)
	}
	a.runtimeMetrics = reg
	return nil
}

// initializeServices loads the cleaned dataset and starts the hub
func (a *Application) initializeServices() error {
	ds, err := services.LoadDataset(a.Paths, a.Logger)
	if err != nil {
		if a.Config.Dashboard.RequireDataset {
			return fmt.Errorf("failed to load dataset: %w", err)
		}
		// Pages answer 503 until a reload succeeds
		a.Logger.Warn("Dataset not loaded",
			slog.String("error", err.Error()),
			slog.String("data_dir", a.Paths.DataDir),
			slog.String("action", "run the cleaner, then POST /api/dataset/reload"))
	}

	wsMetrics, err := ws.NewOTelMetrics(a.meter)
	if err != nil {
		return fmt.Errorf("failed to initialize WebSocket metrics: %w", err)
	}

	hub := ws.NewHub(a.Logger, wsMetrics)
	hub.Start()
	a.WebSocketHub = hub

	a.DashboardService = services.NewDashboardService(a.Paths, a.Config.Dashboard, a.Logger,
		services.WithMetrics(a.Metrics),
		services.WithBroadcaster(hub),
		services.WithServiceTracer(a.tracer),
	)
	if ds != nil {
		a.DashboardService.SetDataset(ds)
	}

	a.HealthService = services.NewHealthService(a.DashboardService, hub, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// These don't wrap the ResponseWriter, so the WebSocket upgrade can hijack it
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsHandler := handlers.NewWebSocketHandler(
		a.WebSocketHub,
		ws.NewUpgrader(a.Config.WebSocket, a.Config.Security.AllowedOrigins),
		ws.OptionsFromConfig(a.Config.WebSocket),
		a.Logger,
	)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", wsHandler)

	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	validator := customMiddleware.NewValidationMiddleware(a.Logger)

	pageHandler, err := handlers.NewPageHandler(a.DashboardService, validator, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.corsConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Get("/", pageHandler.ServeDashboard)
		a.setupAPIRoutes(r, errorHandler, validator)
	})

	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, errorHandler))

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.Router = r
	return nil
}

// setupAPIRoutes configures the JSON endpoints under /api
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler, validator *customMiddleware.ValidationMiddleware) {
	dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, validator, errorHandler, a.Logger)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	clientLogHandler := handlers.NewClientLogHandler(validator, errorHandler, a.Logger)

	r.Route("/api", func(r chi.Router) {
		if a.Config.Server.RequestTimeout > 0 {
			r.Use(middleware.Timeout(a.Config.Server.RequestTimeout))
		}

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Post("/logs", clientLogHandler.Handle)

		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Mount("/", dashboardHandler.Routes())
		})
	})
}

// corsConfig allows the configured origins plus the server's own address
func (a *Application) corsConfig() customMiddleware.CORSConfig {
	origins := []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	origins = append(origins, a.Config.Security.AllowedOrigins...)

	return customMiddleware.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Addr returns the address the server listens on, or "" before Start
func (a *Application) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Start binds the listener and serves in the background. cancel is called
// when the server stops with an error.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", ln.Addr().String()),
		slog.Bool("dataset_loaded", a.DashboardService.Dataset() != nil))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return nil
	}
	a.stopped = true
	a.mu.Unlock()

	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.WebSocketHub.Stop()

	if a.runtimeMetrics != nil {
		if err := a.runtimeMetrics.Unregister(); err != nil {
			a.Logger.ErrorContext(ctx, "Error unregistering runtime metrics", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck reports unwritable directories and missing cleaned tables
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"Data":    a.Paths.DataDir,
		"Reports": a.Paths.ReportsDir,
		"Logs":    a.Paths.LogsDir,
	}
	for name, dir := range directories {
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		} else {
			_ = os.Remove(testFile)
		}
	}

	for _, file := range a.Paths.CleanedOutputs() {
		if !config.FileExists(file) {
			warnings = append(warnings, fmt.Sprintf("cleaned table not found: %s", file))
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
