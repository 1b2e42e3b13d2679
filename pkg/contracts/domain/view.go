package domain

// Selection is the user's choice of class and subject
type Selection struct {
	Class   string `json:"turma" validate:"required,max=128"`
	Subject string `json:"disciplina" validate:"required,max=128"`
}

// Options holds the closed enumerations offered for selection
type Options struct {
	Classes  []string `json:"classes"`
	Subjects []string `json:"subjects"`
}

// GradeRow is a grade joined with the student's name
type GradeRow struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Value       float64 `json:"value"`
}

// AttendanceRow is an attendance record joined with the student's name.
// Percentage is nil when the record has no classes.
type AttendanceRow struct {
	StudentID       string   `json:"student_id"`
	StudentName     string   `json:"student_name"`
	ClassesAttended int      `json:"classes_attended"`
	TotalClasses    int      `json:"total_classes"`
	Percentage      *float64 `json:"percentage"`
}

// FilteredView is the projection of a dataset onto a selection
type FilteredView struct {
	Selection  Selection       `json:"selection"`
	SubjectID  string          `json:"subject_id"`
	Roster     []Student       `json:"roster"`
	Grades     []GradeRow      `json:"grades"`
	Attendance []AttendanceRow `json:"attendance"`
}

// BarPoint is a single bar of a bar chart
type BarPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BarChart describes a bar chart
type BarChart struct {
	Title  string     `json:"title"`
	XLabel string     `json:"x_label"`
	YLabel string     `json:"y_label"`
	Points []BarPoint `json:"points"`
}

// ClusterPoint is one student in the grade x attendance plane
type ClusterPoint struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Grade       float64 `json:"grade"`
	Attendance  float64 `json:"attendance"`
	Cluster     int     `json:"cluster"`
}

// ScatterChart describes the clustering scatter plot
type ScatterChart struct {
	Title    string         `json:"title"`
	XLabel   string         `json:"x_label"`
	YLabel   string         `json:"y_label"`
	Clusters int            `json:"clusters"`
	Points   []ClusterPoint `json:"points"`
}

// Statistics holds the quick statistics block.
// Means are nil when there is nothing to average.
type Statistics struct {
	MeanGrade      *float64 `json:"mean_grade"`
	MeanAttendance *float64 `json:"mean_attendance"`
	StudentCount   int      `json:"student_count"`
	Lines          []string `json:"lines"`
}

// Dashboard is the fully computed dashboard for a selection
type Dashboard struct {
	Selection        Selection     `json:"selection"`
	GradesChart      BarChart      `json:"grades_chart"`
	AttendanceChart  BarChart      `json:"attendance_chart"`
	Clustering       *ScatterChart `json:"clustering,omitempty"`
	ClusteringNotice string        `json:"clustering_notice,omitempty"`
	Statistics       Statistics    `json:"statistics"`
}
