package domain

import (
	"time"
)

// Student represents a row of the students table
type Student struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

// Subject represents a row of the subjects table
type Subject struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

// Grade represents a student's grade in a subject
type Grade struct {
	StudentID string  `json:"student_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	Value     float64 `json:"value"`
}

// Attendance represents a student's attendance in a subject
type Attendance struct {
	StudentID       string `json:"student_id" validate:"required"`
	SubjectID       string `json:"subject_id" validate:"required"`
	ClassesAttended int    `json:"classes_attended" validate:"min=0"`
	TotalClasses    int    `json:"total_classes" validate:"min=0"`
}

// Percentage returns classes attended over total classes times 100.
// ok is false when no classes were given.
func (a Attendance) Percentage() (pct float64, ok bool) {
	if a.TotalClasses == 0 {
		return 0, false
	}
	return float64(a.ClassesAttended) / float64(a.TotalClasses) * 100, true
}

// Dataset is an immutable snapshot of the four cleaned tables.
// Identifiers are held in canonical form.
type Dataset struct {
	Students   []Student    `json:"students"`
	Subjects   []Subject    `json:"subjects"`
	Grades     []Grade      `json:"grades"`
	Attendance []Attendance `json:"attendance"`
	LoadedAt   time.Time    `json:"loaded_at"`
}

// DatasetSummary counts the rows of a dataset
type DatasetSummary struct {
	Students   int       `json:"students"`
	Subjects   int       `json:"subjects"`
	Grades     int       `json:"grades"`
	Attendance int       `json:"attendance"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Summary returns the row counts of the dataset
func (d *Dataset) Summary() DatasetSummary {
	if d == nil {
		return DatasetSummary{}
	}
	return DatasetSummary{
		Students:   len(d.Students),
		Subjects:   len(d.Subjects),
		Grades:     len(d.Grades),
		Attendance: len(d.Attendance),
		LoadedAt:   d.LoadedAt,
	}
}
