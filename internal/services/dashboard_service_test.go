package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"escolacli/internal/analytics"
	"escolacli/internal/config"
	apperrors "escolacli/internal/errors"
	"escolacli/internal/infrastructure"
	"escolacli/internal/shared/testutil"
	"escolacli/pkg/contracts/domain"
	"escolacli/pkg/contracts/events"
)

var dashboardConfig = config.DashboardConfig{ClusterSeed: 42, MaxClusters: 3}

func setupService(t *testing.T, opts ...DashboardOption) (*DashboardService, *config.Paths, *testutil.BufferedSlogHandler) {
	t.Helper()

	base := t.TempDir()
	testutil.WriteCleanDataset(t, base)
	paths, err := config.NewPaths(base)
	require.NoError(t, err)

	logger, handler := testutil.NewTestLogger(t)
	svc := NewDashboardService(paths, dashboardConfig, logger, opts...)

	ds, err := LoadDataset(paths, logger)
	require.NoError(t, err)
	svc.SetDataset(ds)

	return svc, paths, handler
}

func TestLoadDataset(t *testing.T) {
	base := t.TempDir()
	testutil.WriteCleanDataset(t, base)
	paths, err := config.NewPaths(base)
	require.NoError(t, err)

	ds, err := LoadDataset(paths, slog.Default())
	require.NoError(t, err)

	summary := ds.Summary()
	assert.Equal(t, 5, summary.Students)
	assert.Equal(t, 2, summary.Subjects)
	assert.Equal(t, 6, summary.Grades)
	assert.Equal(t, 6, summary.Attendance)
}

func TestLoadDataset_MissingFile(t *testing.T) {
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)

	_, err = LoadDataset(paths, slog.Default())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingInput))
}

func TestLoadDataset_BadHeader(t *testing.T) {
	base := t.TempDir()
	dataDir := testutil.WriteCleanDataset(t, base)
	testutil.WriteFile(t, dataDir, config.CleanGradesFile, "aluno_id,disciplina_id\n1,10\n")
	paths, err := config.NewPaths(base)
	require.NoError(t, err)

	_, err = LoadDataset(paths, slog.Default())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestDashboardService_NoDataset(t *testing.T) {
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	svc := NewDashboardService(paths, dashboardConfig, nil)
	ctx := context.Background()

	assert.Nil(t, svc.Dataset())

	_, err = svc.Options(ctx)
	assert.ErrorIs(t, err, apperrors.ErrDatasetUnavailable)

	_, err = svc.Dashboard(ctx, domain.Selection{Class: "2025B", Subject: "Português"})
	assert.ErrorIs(t, err, apperrors.ErrDatasetUnavailable)

	_, err = svc.DefaultSelection(ctx)
	assert.ErrorIs(t, err, apperrors.ErrDatasetUnavailable)
}

func TestDashboardService_Options(t *testing.T) {
	svc, _, _ := setupService(t)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2025A", "2025B"}, opts.Classes)
	assert.Equal(t, []string{"Matemática", "Português"}, opts.Subjects)

	sel, err := svc.DefaultSelection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Selection{Class: "2025A", Subject: "Matemática"}, sel)
}

func TestDashboardService_DefaultSelection_Empty(t *testing.T) {
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	svc := NewDashboardService(paths, dashboardConfig, nil)
	svc.SetDataset(&domain.Dataset{})

	_, err = svc.DefaultSelection(context.Background())
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestDashboardService_Dashboard(t *testing.T) {
	svc, _, _ := setupService(t)

	dash, err := svc.Dashboard(context.Background(), domain.Selection{Class: "2025B", Subject: "Português"})
	require.NoError(t, err)

	assert.Equal(t, "Notas da disciplina Português - Turma 2025B", dash.GradesChart.Title)
	require.Len(t, dash.GradesChart.Points, 3)
	assert.Equal(t, domain.BarPoint{Label: "Carla", Value: 7.5}, dash.GradesChart.Points[0])

	assert.Equal(t, "Percentual de Presença - Disciplina Português - Turma 2025B", dash.AttendanceChart.Title)
	require.Len(t, dash.AttendanceChart.Points, 2)

	require.NotNil(t, dash.Clustering)
	assert.Equal(t, 2, dash.Clustering.Clusters)
	assert.Empty(t, dash.ClusteringNotice)

	assert.Equal(t, []string{
		"Nota média da disciplina: 7.17",
		"Presença média da disciplina: 95.00%",
		"Número de alunos na turma: 3",
	}, dash.Statistics.Lines)
}

func TestDashboardService_Dashboard_EmptySelection(t *testing.T) {
	svc, _, _ := setupService(t)

	dash, err := svc.Dashboard(context.Background(), domain.Selection{Class: "2025A", Subject: "Português"})
	require.NoError(t, err)

	assert.Empty(t, dash.GradesChart.Points)
	assert.Empty(t, dash.AttendanceChart.Points)
	assert.Nil(t, dash.Clustering)
	assert.Equal(t, analytics.ClusteringNotice, dash.ClusteringNotice)
	assert.Equal(t, "Nota média da disciplina: N/A", dash.Statistics.Lines[0])
	assert.Equal(t, "Número de alunos na turma: 2", dash.Statistics.Lines[2])
}

func TestDashboardService_Dashboard_UnknownSelection(t *testing.T) {
	svc, _, _ := setupService(t)

	tests := []struct {
		name string
		sel  domain.Selection
	}{
		{"unknown class", domain.Selection{Class: "2030Z", Subject: "Português"}},
		{"unknown subject", domain.Selection{Class: "2025B", Subject: "Física"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Dashboard(context.Background(), tt.sel)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		})
	}
}

func TestDashboardService_PartitionerError(t *testing.T) {
	partitioner := &mockPartitioner{}
	partitioner.On("Partition", mock.Anything, 2, uint64(42)).Return(nil, errors.New("diverged"))

	svc, _, handler := setupService(t, WithPartitioner(partitioner, dashboardConfig))

	_, err := svc.Dashboard(context.Background(), domain.Selection{Class: "2025B", Subject: "Português"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diverged")
	assert.True(t, handler.ContainsMessage("Failed to build dashboard"))
	partitioner.AssertExpectations(t)
}

func TestDashboardService_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	metrics, err := infrastructure.CreateDashboardMetrics(provider.Meter("test"))
	require.NoError(t, err)

	svc, _, _ := setupService(t, WithMetrics(metrics))
	ctx := context.Background()

	_, err = svc.Dashboard(ctx, domain.Selection{Class: "2025B", Subject: "Português"})
	require.NoError(t, err)
	_, err = svc.Dashboard(ctx, domain.Selection{Class: "2025A", Subject: "Português"})
	require.NoError(t, err)
	_, err = svc.Reload(ctx)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(2), sums["dashboard_views_total"])
	assert.Equal(t, int64(1), sums["dashboard_clustering_skipped_total"])
	assert.Equal(t, int64(1), sums["dataset_reloads_total"])
}

func TestDashboardService_Export(t *testing.T) {
	svc, _, _ := setupService(t)

	var buf bytes.Buffer
	name, err := svc.Export(context.Background(), domain.Selection{Class: "2025B", Subject: "Português"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "dashboard_2025B_Português.xlsx", name)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Notas")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestDashboardService_Export_Unknown(t *testing.T) {
	svc, _, _ := setupService(t)

	var buf bytes.Buffer
	_, err := svc.Export(context.Background(), domain.Selection{Class: "X", Subject: "Português"}, &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestDashboardService_Reload(t *testing.T) {
	broadcaster := &mockBroadcaster{}
	broadcaster.On("Broadcast", string(events.MessageTypeDatasetReloaded), mock.AnythingOfType("events.DatasetReloaded")).Once()

	svc, paths, _ := setupService(t, WithBroadcaster(broadcaster))
	before := svc.Dataset()

	// A new class appears on disk
	testutil.WriteFile(t, paths.DataDir, config.CleanStudentsFile,
		testutil.CleanStudents+"6,Fábio,2025C\n")

	payload, err := svc.Reload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, payload.Summary.Students)
	assert.Equal(t, []string{"2025A", "2025B", "2025C"}, payload.Options.Classes)
	assert.NotSame(t, before, svc.Dataset())
	assert.Len(t, before.Students, 5, "previous snapshot is not mutated")
	broadcaster.AssertExpectations(t)
}

func TestDashboardService_ReloadFailureKeepsDataset(t *testing.T) {
	broadcaster := &mockBroadcaster{}
	svc, paths, handler := setupService(t, WithBroadcaster(broadcaster))
	before := svc.Dataset()

	testutil.WriteFile(t, paths.DataDir, config.CleanAttendanceFile,
		"aluno_id,disciplina_id,aulas_presencas,total_aulas\n1,10,nove,10\n")

	_, err := svc.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReloadFailed)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	assert.Same(t, before, svc.Dataset())
	assert.True(t, handler.ContainsMessage("Dataset reload failed"))
	broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestDashboardService_ConcurrentReloadsShareOneLoad(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	loader := func(paths *config.Paths, logger *slog.Logger) (*domain.Dataset, error) {
		loads.Add(1)
		<-release
		return &domain.Dataset{Students: []domain.Student{{ID: "1", Name: "Ana", Class: "2025A"}}}, nil
	}

	paths, err := config.NewPaths(filepath.Join(t.TempDir(), "unused"))
	require.NoError(t, err)
	svc := NewDashboardService(paths, dashboardConfig, nil, WithLoader(loader))

	const callers = 5
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reload(context.Background())
			errs <- err
		}()
	}

	// Let the callers pile up on the in-flight load
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.LessOrEqual(t, loads.Load(), int32(callers))
	assert.GreaterOrEqual(t, loads.Load(), int32(1))
	require.NotNil(t, svc.Dataset())
	assert.Len(t, svc.Dataset().Students, 1)
}

func TestDashboardService_ConcurrentReadsDuringReload(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Dashboard(ctx, domain.Selection{Class: "2025B", Subject: "Português"})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Reload(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
