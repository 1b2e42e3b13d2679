package analytics

import (
	"escolacli/internal/errors"
	"escolacli/pkg/contracts/domain"
)

// Options returns the distinct classes and subject names in first-occurrence order
func Options(ds *domain.Dataset) domain.Options {
	opts := domain.Options{Classes: []string{}, Subjects: []string{}}
	if ds == nil {
		return opts
	}

	seen := make(map[string]struct{})
	for _, s := range ds.Students {
		if _, ok := seen[s.Class]; !ok {
			seen[s.Class] = struct{}{}
			opts.Classes = append(opts.Classes, s.Class)
		}
	}

	seen = make(map[string]struct{})
	for _, s := range ds.Subjects {
		if _, ok := seen[s.Name]; !ok {
			seen[s.Name] = struct{}{}
			opts.Subjects = append(opts.Subjects, s.Name)
		}
	}
	return opts
}

// DefaultSelection returns the first class and the first subject
func DefaultSelection(opts domain.Options) (domain.Selection, bool) {
	if len(opts.Classes) == 0 || len(opts.Subjects) == 0 {
		return domain.Selection{}, false
	}
	return domain.Selection{Class: opts.Classes[0], Subject: opts.Subjects[0]}, true
}

// SubjectID returns the id of the first subject named name
func SubjectID(ds *domain.Dataset, name string) (string, bool) {
	for _, s := range ds.Subjects {
		if s.Name == name {
			return s.ID, true
		}
	}
	return "", false
}

// Roster returns the students of class in dataset order
func Roster(ds *domain.Dataset, class string) []domain.Student {
	roster := []domain.Student{}
	for _, s := range ds.Students {
		if s.Class == class {
			roster = append(roster, s)
		}
	}
	return roster
}

// DeriveView filters the grades and attendance of the selected subject down
// to the students of the selected class and joins them with the roster.
// Rows keep the dataset order; a student id listed twice in the roster
// yields one joined row per roster entry.
func DeriveView(ds *domain.Dataset, class, subject string) (domain.FilteredView, error) {
	if ds == nil {
		return domain.FilteredView{}, errors.NewAppError(errors.ErrTypeNotFound, "dataset is not loaded", nil)
	}

	roster := Roster(ds, class)
	if len(roster) == 0 {
		return domain.FilteredView{}, errors.NewAppValidationError("unknown class: "+class).
			WithContext("field", "turma")
	}

	subjectID, ok := SubjectID(ds, subject)
	if !ok {
		return domain.FilteredView{}, errors.NewAppValidationError("unknown subject: "+subject).
			WithContext("field", "disciplina")
	}

	byID := make(map[string][]domain.Student, len(roster))
	for _, s := range roster {
		byID[s.ID] = append(byID[s.ID], s)
	}

	view := domain.FilteredView{
		Selection:  domain.Selection{Class: class, Subject: subject},
		SubjectID:  subjectID,
		Roster:     roster,
		Grades:     []domain.GradeRow{},
		Attendance: []domain.AttendanceRow{},
	}

	for _, g := range ds.Grades {
		if g.SubjectID != subjectID {
			continue
		}
		for _, s := range byID[g.StudentID] {
			view.Grades = append(view.Grades, domain.GradeRow{
				StudentID:   g.StudentID,
				StudentName: s.Name,
				Value:       g.Value,
			})
		}
	}

	for _, a := range ds.Attendance {
		if a.SubjectID != subjectID {
			continue
		}
		var pct *float64
		if p, ok := a.Percentage(); ok {
			pct = &p
		}
		for _, s := range byID[a.StudentID] {
			view.Attendance = append(view.Attendance, domain.AttendanceRow{
				StudentID:       a.StudentID,
				StudentName:     s.Name,
				ClassesAttended: a.ClassesAttended,
				TotalClasses:    a.TotalClasses,
				Percentage:      pct,
			})
		}
	}

	return view, nil
}
