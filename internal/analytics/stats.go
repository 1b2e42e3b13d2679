package analytics

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"escolacli/pkg/contracts/domain"
)

// NotAvailable is shown in place of a mean over no values
const NotAvailable = "N/A"

// Summarize computes the quick statistics of a view. The student count is
// the class roster size whatever the subject.
func Summarize(view domain.FilteredView) domain.Statistics {
	grades := make([]float64, 0, len(view.Grades))
	for _, g := range view.Grades {
		grades = append(grades, g.Value)
	}

	attendance := make([]float64, 0, len(view.Attendance))
	for _, a := range view.Attendance {
		if a.Percentage != nil {
			attendance = append(attendance, *a.Percentage)
		}
	}

	meanGrade, gradeOK := mean(grades)
	meanAttendance, attendanceOK := mean(attendance)

	st := domain.Statistics{StudentCount: len(view.Roster)}

	gradeText, attendanceText := NotAvailable, NotAvailable
	if gradeOK {
		st.MeanGrade = round2(meanGrade)
		gradeText = fmt.Sprintf("%.2f", meanGrade)
	}
	if attendanceOK {
		st.MeanAttendance = round2(meanAttendance)
		attendanceText = fmt.Sprintf("%.2f%%", meanAttendance)
	}

	st.Lines = []string{
		"Nota média da disciplina: " + gradeText,
		"Presença média da disciplina: " + attendanceText,
		fmt.Sprintf("Número de alunos na turma: %d", st.StudentCount),
	}
	return st
}

func mean(values []float64) (float64, bool) {
	m, err := stats.Mean(values)
	if err != nil {
		return 0, false
	}
	return m, true
}

func round2(v float64) *float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return nil
	}
	return &r
}
