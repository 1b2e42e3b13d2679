package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"escolacli/internal/analytics"
	"escolacli/internal/config"
	"escolacli/internal/dataprocessing"
	apperrors "escolacli/internal/errors"
	"escolacli/internal/exporter"
	"escolacli/internal/infrastructure"
	"escolacli/internal/validation"
	"escolacli/internal/websocket"
	"escolacli/pkg/contracts/domain"
	"escolacli/pkg/contracts/events"
)

// DatasetLoader reads the cleaned dataset from disk
type DatasetLoader func(paths *config.Paths, logger *slog.Logger) (*domain.Dataset, error)

// LoadDataset checks that the four cleaned files exist with the expected
// headers and decodes them
func LoadDataset(paths *config.Paths, logger *slog.Logger) (*domain.Dataset, error) {
	if err := validation.NewFileValidator(logger).ValidateCleanedDataset(paths); err != nil {
		return nil, err
	}
	return dataprocessing.ReadCleanDataset(paths)
}

// DashboardService serves dashboard views over the active dataset
type DashboardService struct {
	paths       *config.Paths
	dataset     atomic.Pointer[domain.Dataset]
	reloads     singleflight.Group
	loader      DatasetLoader
	builder     *analytics.Builder
	metrics     *infrastructure.DashboardMetrics
	broadcaster websocket.Broadcaster
	tracer      trace.Tracer
	logger      *slog.Logger
}

// DashboardOption configures a DashboardService
type DashboardOption func(*DashboardService)

// WithMetrics records dashboard metrics
func WithMetrics(metrics *infrastructure.DashboardMetrics) DashboardOption {
	return func(s *DashboardService) {
		s.metrics = metrics
	}
}

// WithBroadcaster announces reloads to connected clients
func WithBroadcaster(b websocket.Broadcaster) DashboardOption {
	return func(s *DashboardService) {
		s.broadcaster = b
	}
}

// WithLoader replaces LoadDataset
func WithLoader(loader DatasetLoader) DashboardOption {
	return func(s *DashboardService) {
		s.loader = loader
	}
}

// WithPartitioner replaces the k-means partitioner
func WithPartitioner(p analytics.Partitioner, cfg config.DashboardConfig) DashboardOption {
	return func(s *DashboardService) {
		s.builder = analytics.NewBuilder(p, cfg.MaxClusters, cfg.ClusterSeed)
	}
}

// WithServiceTracer overrides the global tracer
func WithServiceTracer(tracer trace.Tracer) DashboardOption {
	return func(s *DashboardService) {
		s.tracer = tracer
	}
}

// NewDashboardService creates a service without a dataset; call SetDataset or Reload before serving
func NewDashboardService(paths *config.Paths, cfg config.DashboardConfig, logger *slog.Logger, opts ...DashboardOption) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &DashboardService{
		paths:   paths,
		loader:  LoadDataset,
		builder: analytics.NewBuilder(analytics.NewKMeans(), cfg.MaxClusters, cfg.ClusterSeed),
		tracer:  otel.Tracer("escolacli/services"),
		logger:  infrastructure.WithComponent(logger, "dashboard_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDataset installs ds as the active dataset
func (s *DashboardService) SetDataset(ds *domain.Dataset) {
	s.dataset.Store(ds)
	if ds != nil {
		summary := ds.Summary()
		s.logger.Info("Dataset loaded",
			slog.Int("students", summary.Students),
			slog.Int("subjects", summary.Subjects),
			slog.Int("grades", summary.Grades),
			slog.Int("attendance", summary.Attendance))
	}
}

// Dataset returns the active dataset, or nil before the first load
func (s *DashboardService) Dataset() *domain.Dataset {
	return s.dataset.Load()
}

func (s *DashboardService) current() (*domain.Dataset, error) {
	ds := s.dataset.Load()
	if ds == nil {
		return nil, apperrors.ErrDatasetUnavailable
	}
	return ds, nil
}

// Options lists the selectable classes and subjects
func (s *DashboardService) Options(ctx context.Context) (domain.Options, error) {
	ds, err := s.current()
	if err != nil {
		return domain.Options{}, err
	}
	return analytics.Options(ds), nil
}

// DefaultSelection returns the first class and first subject
func (s *DashboardService) DefaultSelection(ctx context.Context) (domain.Selection, error) {
	opts, err := s.Options(ctx)
	if err != nil {
		return domain.Selection{}, err
	}
	sel, ok := analytics.DefaultSelection(opts)
	if !ok {
		return domain.Selection{}, ErrNoSelection
	}
	return sel, nil
}

// View derives the filtered view for sel
func (s *DashboardService) View(ctx context.Context, sel domain.Selection) (domain.FilteredView, error) {
	ds, err := s.current()
	if err != nil {
		return domain.FilteredView{}, err
	}
	return analytics.DeriveView(ds, sel.Class, sel.Subject)
}

// Dashboard computes charts, grouping and statistics for sel
func (s *DashboardService) Dashboard(ctx context.Context, sel domain.Selection) (dash domain.Dashboard, err error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.build", trace.WithAttributes(
		attribute.String("dashboard.class", sel.Class),
		attribute.String("dashboard.subject", sel.Subject),
	))
	start := time.Now()
	defer func() {
		s.metrics.RecordDashboardView(ctx, sel.Class, sel.Subject, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	view, err := s.View(ctx, sel)
	if err != nil {
		return domain.Dashboard{}, err
	}

	dash, err = s.builder.Build(view)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build dashboard",
			slog.String("turma", sel.Class),
			slog.String("disciplina", sel.Subject),
			slog.String("error", err.Error()))
		return domain.Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}

	if dash.Clustering == nil {
		s.metrics.RecordClusteringSkipped(ctx, sel.Class)
	}
	span.SetAttributes(
		attribute.Int("dashboard.grades", len(view.Grades)),
		attribute.Int("dashboard.attendance", len(view.Attendance)),
	)

	s.logger.DebugContext(ctx, "Dashboard built",
		slog.String("turma", sel.Class),
		slog.String("disciplina", sel.Subject),
		slog.Int("grades", len(view.Grades)),
		slog.Int("attendance", len(view.Attendance)),
		slog.Bool("clustered", dash.Clustering != nil))
	return dash, nil
}

// Export writes the filtered view for sel to w as a workbook and returns its file name
func (s *DashboardService) Export(ctx context.Context, sel domain.Selection, w io.Writer) (string, error) {
	view, err := s.View(ctx, sel)
	if err != nil {
		return "", err
	}
	if err := exporter.WriteViewWorkbook(w, view); err != nil {
		return "", apperrors.NewStorageError("failed to write workbook", err)
	}
	return exporter.ViewWorkbookName(sel), nil
}

// Reload re-reads the cleaned files and swaps them in. Concurrent calls share
// one load. On failure the previous dataset stays active.
func (s *DashboardService) Reload(ctx context.Context) (events.DatasetReloaded, error) {
	ctx, span := s.tracer.Start(ctx, "dataset.reload")
	defer span.End()

	v, err, shared := s.reloads.Do("reload", func() (interface{}, error) {
		ds, err := s.loader(s.paths, s.logger)
		if err != nil {
			return nil, err
		}
		s.dataset.Store(ds)
		payload := events.DatasetReloaded{Summary: ds.Summary(), Options: analytics.Options(ds)}
		if s.broadcaster != nil {
			s.broadcaster.Broadcast(string(events.MessageTypeDatasetReloaded), payload)
		}
		return payload, nil
	})
	s.metrics.RecordDatasetReload(ctx, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "Dataset reload failed", slog.String("error", err.Error()))
		return events.DatasetReloaded{}, fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}

	payload := v.(events.DatasetReloaded)
	s.logger.InfoContext(ctx, "Dataset reloaded",
		slog.Int("students", payload.Summary.Students),
		slog.Int("subjects", payload.Summary.Subjects),
		slog.Bool("shared", shared))
	return payload, nil
}
