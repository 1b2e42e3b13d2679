package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"escolacli/pkg/contracts"
)

const (
	ServiceName = "escola-dashboard"
	MeterName   = "escolacli"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
	// TraceWriter receives stdout spans; nil means os.Stdout
	TraceWriter io.Writer
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration.
// Spans are sampled but not exported; metrics go to Prometheus.
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    env,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
	}
}

// InitializeOTel initializes tracing and metrics providers
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger.With(slog.String("component", "otel")),
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	providers.Logger.InfoContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up the tracer provider. With the "none" exporter
// spans are still created so trace ids can be correlated in logs.
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	}

	switch cfg.TraceExporter {
	case "stdout":
		w := cfg.TraceWriter
		if w == nil {
			w = os.Stdout
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case "none", "":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up the meter provider backed by a Prometheus registry
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		registry := prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.Registry = registry
		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetMeterProvider(mp)

	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.DebugContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// DashboardMetrics holds all application-specific metrics
type DashboardMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dashboard metrics
	DashboardViewsTotal    metric.Int64Counter
	DashboardViewDuration  metric.Float64Histogram
	ClusteringSkippedTotal metric.Int64Counter
	DatasetReloadsTotal    metric.Int64Counter
}

// CreateDashboardMetrics creates application-specific metrics
func CreateDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	var (
		m   DashboardMetrics
		err error
	)

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.DashboardViewsTotal, err = meter.Int64Counter(
		"dashboard_views_total",
		metric.WithDescription("Total number of dashboard views computed"),
	); err != nil {
		return nil, err
	}

	if m.DashboardViewDuration, err = meter.Float64Histogram(
		"dashboard_view_duration_seconds",
		metric.WithDescription("Time to derive a dashboard view in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.ClusteringSkippedTotal, err = meter.Int64Counter(
		"dashboard_clustering_skipped_total",
		metric.WithDescription("Dashboard views without enough data to cluster"),
	); err != nil {
		return nil, err
	}

	if m.DatasetReloadsTotal, err = meter.Int64Counter(
		"dataset_reloads_total",
		metric.WithDescription("Total number of dataset reloads"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordDashboardView records a dashboard computation
func (m *DashboardMetrics) RecordDashboardView(ctx context.Context, class, subject string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("class", class),
		attribute.String("subject", subject),
		attribute.String("status", status),
	)

	m.DashboardViewsTotal.Add(ctx, 1, attrs)
	m.DashboardViewDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordClusteringSkipped records a view with no points to cluster
func (m *DashboardMetrics) RecordClusteringSkipped(ctx context.Context, class string) {
	if m == nil {
		return
	}
	m.ClusteringSkippedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("class", class)))
}

// RecordDatasetReload records a reload attempt
func (m *DashboardMetrics) RecordDatasetReload(ctx context.Context, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.DatasetReloadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordHTTPRequest records a completed HTTP request
func (m *DashboardMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.DebugContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
