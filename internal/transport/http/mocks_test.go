package http

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"escolacli/internal/services"
	"escolacli/pkg/contracts/domain"
	"escolacli/pkg/contracts/events"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Options(ctx context.Context) (domain.Options, error) {
	args := m.Called()
	return args.Get(0).(domain.Options), args.Error(1)
}

func (m *MockDashboardService) DefaultSelection(ctx context.Context) (domain.Selection, error) {
	args := m.Called()
	return args.Get(0).(domain.Selection), args.Error(1)
}

func (m *MockDashboardService) Dashboard(ctx context.Context, sel domain.Selection) (domain.Dashboard, error) {
	args := m.Called(sel)
	return args.Get(0).(domain.Dashboard), args.Error(1)
}

// Export writes the second return value to w when there is no error
func (m *MockDashboardService) Export(ctx context.Context, sel domain.Selection, w io.Writer) (string, error) {
	args := m.Called(sel)
	if args.Error(2) == nil {
		_, _ = io.WriteString(w, args.String(1))
	}
	return args.String(0), args.Error(2)
}

func (m *MockDashboardService) Reload(ctx context.Context) (events.DatasetReloaded, error) {
	args := m.Called()
	return args.Get(0).(events.DatasetReloaded), args.Error(1)
}

// MockHealthService is a mock implementation of HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func sampleOptions() domain.Options {
	return domain.Options{
		Classes:  []string{"2025A", "2025B"},
		Subjects: []string{"Matemática", "Português"},
	}
}

func sampleSelection() domain.Selection {
	return domain.Selection{Class: "2025B", Subject: "Português"}
}

func sampleDashboard() domain.Dashboard {
	mean := 7.17
	return domain.Dashboard{
		Selection: sampleSelection(),
		GradesChart: domain.BarChart{
			Title:  "Notas da disciplina Português - Turma 2025B",
			XLabel: "Aluno",
			YLabel: "Nota",
			Points: []domain.BarPoint{{Label: "Carla", Value: 8}, {Label: "Diego", Value: 6.5}, {Label: "Eva", Value: 7}},
		},
		AttendanceChart: domain.BarChart{
			Title:  "Percentual de Presença - Disciplina Português - Turma 2025B",
			XLabel: "Aluno",
			YLabel: "% Presença",
			Points: []domain.BarPoint{{Label: "Carla", Value: 100}, {Label: "Diego", Value: 90}},
		},
		Clustering: &domain.ScatterChart{
			Title:    "Clustering de Alunos - Turma 2025B (Nota x Presença)",
			XLabel:   "Nota",
			YLabel:   "Presença (%)",
			Clusters: 2,
			Points: []domain.ClusterPoint{
				{StudentID: "3", StudentName: "Carla", Grade: 8, Attendance: 100, Cluster: 0},
				{StudentID: "4", StudentName: "Diego", Grade: 6.5, Attendance: 90, Cluster: 1},
			},
		},
		Statistics: domain.Statistics{
			MeanGrade:    &mean,
			StudentCount: 3,
			Lines: []string{
				"Nota média da disciplina: 7.17",
				"Presença média da disciplina: 95.00%",
				"Número de alunos na turma: 3",
			},
		},
	}
}

func sampleReload() events.DatasetReloaded {
	return events.DatasetReloaded{
		Summary: domain.DatasetSummary{Students: 5, Subjects: 2, Grades: 6, Attendance: 6, LoadedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		Options: sampleOptions(),
	}
}
