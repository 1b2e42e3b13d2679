package dataprocessing

import (
	"time"

	"escolacli/internal/config"
	"escolacli/internal/errors"
	"escolacli/pkg/contracts/domain"
)

// ReadCleanDataset reads the four cleaned tables into a Dataset.
// Identifiers are stored in canonical form.
func ReadCleanDataset(paths *config.Paths) (*domain.Dataset, error) {
	students, err := ReadTable(paths.CleanStudentsCSV, domain.TableStudents)
	if err != nil {
		return nil, err
	}
	subjects, err := ReadTable(paths.CleanSubjectsCSV, domain.TableSubjects)
	if err != nil {
		return nil, err
	}
	grades, err := ReadTable(paths.CleanGradesCSV, domain.TableGrades)
	if err != nil {
		return nil, err
	}
	attendance, err := ReadTable(paths.CleanAttendanceCSV, domain.TableAttendance)
	if err != nil {
		return nil, err
	}

	return DecodeDataset(students, subjects, grades, attendance)
}

// DecodeDataset converts cleaned tables into the domain model
func DecodeDataset(students, subjects, grades, attendance Table) (*domain.Dataset, error) {
	ds := &domain.Dataset{LoadedAt: time.Now()}

	var err error
	if ds.Students, err = DecodeStudents(students); err != nil {
		return nil, err
	}
	if ds.Subjects, err = DecodeSubjects(subjects); err != nil {
		return nil, err
	}
	if ds.Grades, err = DecodeGrades(grades); err != nil {
		return nil, err
	}
	if ds.Attendance, err = DecodeAttendance(attendance); err != nil {
		return nil, err
	}
	return ds, nil
}

// columns resolves the policy columns of t, in policy order
func columns(t Table, policy Policy) ([]int, error) {
	idx := make([]int, len(policy.Columns))
	for i, c := range policy.Columns {
		idx[i] = t.ColumnIndex(c.Name)
		if idx[i] < 0 {
			return nil, errors.NewSchemaError(policy.Table, 0, c.Name, "required column is missing")
		}
	}
	return idx, nil
}

// DecodeStudents decodes the cleaned students table
func DecodeStudents(t Table) ([]domain.Student, error) {
	idx, err := columns(t, StudentsPolicy)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Student, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, domain.Student{
			ID:    CanonicalKey(row[idx[0]]),
			Name:  row[idx[1]],
			Class: row[idx[2]],
		})
	}
	return out, nil
}

// DecodeSubjects decodes the cleaned subjects table
func DecodeSubjects(t Table) ([]domain.Subject, error) {
	idx, err := columns(t, SubjectsPolicy)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Subject, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, domain.Subject{
			ID:   CanonicalKey(row[idx[0]]),
			Name: row[idx[1]],
		})
	}
	return out, nil
}

// DecodeGrades decodes the cleaned grades table
func DecodeGrades(t Table) ([]domain.Grade, error) {
	idx, err := columns(t, GradesPolicy)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Grade, 0, t.Len())
	for i, row := range t.Rows {
		value, err := parseNumber(row[idx[2]])
		if err != nil {
			return nil, errors.NewSchemaError(t.Name, i+2, ColumnGrade, err.Error())
		}
		out = append(out, domain.Grade{
			StudentID: CanonicalKey(row[idx[0]]),
			SubjectID: CanonicalKey(row[idx[1]]),
			Value:     value,
		})
	}
	return out, nil
}

// DecodeAttendance decodes the cleaned attendance table
func DecodeAttendance(t Table) ([]domain.Attendance, error) {
	idx, err := columns(t, AttendancePolicy)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Attendance, 0, t.Len())
	for i, row := range t.Rows {
		attended, err := decodeCount(t.Name, i+2, ColumnClassesAttended, row[idx[2]])
		if err != nil {
			return nil, err
		}
		total, err := decodeCount(t.Name, i+2, ColumnTotalClasses, row[idx[3]])
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Attendance{
			StudentID:       CanonicalKey(row[idx[0]]),
			SubjectID:       CanonicalKey(row[idx[1]]),
			ClassesAttended: attended,
			TotalClasses:    total,
		})
	}
	return out, nil
}

func decodeCount(table string, row int, column, cell string) (int, error) {
	v, err := ParseInt(cell)
	if err != nil {
		return 0, errors.NewSchemaError(table, row, column, err.Error())
	}
	return int(v), nil
}
