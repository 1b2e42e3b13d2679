package analytics

import (
	"fmt"

	"escolacli/pkg/contracts/domain"
)

// Chart texts
const (
	LabelStudent    = "Aluno"
	LabelGrade      = "Nota"
	LabelAttendance = "% Presença"

	ClusteringNotice = "Não há dados suficientes para realizar clustering."
)

// Builder turns a filtered view into a dashboard
type Builder struct {
	partitioner Partitioner
	maxClusters int
	seed        uint64
}

// NewBuilder creates a Builder grouping into at most maxClusters groups
func NewBuilder(partitioner Partitioner, maxClusters int, seed uint64) *Builder {
	if partitioner == nil {
		partitioner = NewKMeans()
	}
	if maxClusters < 1 {
		maxClusters = 1
	}
	return &Builder{partitioner: partitioner, maxClusters: maxClusters, seed: seed}
}

// Build computes charts, grouping and statistics for view
func (b *Builder) Build(view domain.FilteredView) (domain.Dashboard, error) {
	sel := view.Selection

	dash := domain.Dashboard{
		Selection:       sel,
		GradesChart:     GradesChart(view),
		AttendanceChart: AttendanceChart(view),
		Statistics:      Summarize(view),
	}

	scatter, err := b.Cluster(view)
	if err != nil {
		return domain.Dashboard{}, err
	}
	if scatter == nil {
		dash.ClusteringNotice = ClusteringNotice
	} else {
		dash.Clustering = scatter
	}
	return dash, nil
}

// GradesChart returns one bar per grade row
func GradesChart(view domain.FilteredView) domain.BarChart {
	chart := domain.BarChart{
		Title:  fmt.Sprintf("Notas da disciplina %s - Turma %s", view.Selection.Subject, view.Selection.Class),
		XLabel: LabelStudent,
		YLabel: LabelGrade,
		Points: make([]domain.BarPoint, 0, len(view.Grades)),
	}
	for _, g := range view.Grades {
		chart.Points = append(chart.Points, domain.BarPoint{Label: g.StudentName, Value: g.Value})
	}
	return chart
}

// AttendanceChart returns one bar per attendance row with a defined percentage
func AttendanceChart(view domain.FilteredView) domain.BarChart {
	chart := domain.BarChart{
		Title:  fmt.Sprintf("Percentual de Presença - Disciplina %s - Turma %s", view.Selection.Subject, view.Selection.Class),
		XLabel: LabelStudent,
		YLabel: LabelAttendance,
		Points: make([]domain.BarPoint, 0, len(view.Attendance)),
	}
	for _, a := range view.Attendance {
		if a.Percentage == nil {
			continue
		}
		chart.Points = append(chart.Points, domain.BarPoint{Label: a.StudentName, Value: *a.Percentage})
	}
	return chart
}

// Features joins grade rows with attendance rows of the same student that
// have a defined percentage, in grade order
func Features(view domain.FilteredView) []domain.ClusterPoint {
	points := []domain.ClusterPoint{}
	for _, g := range view.Grades {
		for _, a := range view.Attendance {
			if a.StudentID != g.StudentID || a.Percentage == nil {
				continue
			}
			points = append(points, domain.ClusterPoint{
				StudentID:   g.StudentID,
				StudentName: g.StudentName,
				Grade:       g.Value,
				Attendance:  *a.Percentage,
			})
		}
	}
	return points
}

// Cluster groups the students of the view by grade and attendance.
// It returns nil when there are no points to group.
func (b *Builder) Cluster(view domain.FilteredView) (*domain.ScatterChart, error) {
	points := Features(view)
	if len(points) == 0 {
		return nil, nil
	}

	k := min(b.maxClusters, len(points))
	matrix := make([][]float64, len(points))
	for i, p := range points {
		matrix[i] = []float64{p.Grade, p.Attendance}
	}

	labels, err := b.partitioner.Partition(matrix, k, b.seed)
	if err != nil {
		return nil, fmt.Errorf("failed to partition %d points: %w", len(points), err)
	}
	if len(labels) != len(points) {
		return nil, fmt.Errorf("partitioner returned %d labels for %d points", len(labels), len(points))
	}
	for i := range points {
		points[i].Cluster = labels[i]
	}

	return &domain.ScatterChart{
		Title:    fmt.Sprintf("Clustering de Alunos - Turma %s (Nota x Presença)", view.Selection.Class),
		XLabel:   LabelGrade,
		YLabel:   LabelAttendance,
		Clusters: k,
		Points:   points,
	}, nil
}
