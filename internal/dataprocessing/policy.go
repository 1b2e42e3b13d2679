package dataprocessing

import "escolacli/pkg/contracts/domain"

// UnknownValue replaces missing text cells
const UnknownValue = "Desconhecido"

// ColumnKind is the type a column is coerced to
type ColumnKind int

const (
	// KindText columns keep their text
	KindText ColumnKind = iota
	// KindFloat columns are written as floats (8 becomes 8.0)
	KindFloat
	// KindInt columns must hold integral values
	KindInt
)

// Column describes one required column of a table
type Column struct {
	Name string
	Kind ColumnKind
	// Key columns are compared in canonical form
	Key bool
}

// Policy describes how one table is cleaned
type Policy struct {
	Table   string
	Columns []Column
	// Fill replaces every missing cell
	Fill string
}

// Columns of the four tables as they appear in the CSV headers
const (
	ColumnID              = "id"
	ColumnName            = "nome"
	ColumnClass           = "turma"
	ColumnStudentID       = "aluno_id"
	ColumnSubjectID       = "disciplina_id"
	ColumnGrade           = "nota"
	ColumnClassesAttended = "aulas_presencas"
	ColumnTotalClasses    = "total_aulas"
)

var (
	StudentsPolicy = Policy{
		Table: domain.TableStudents,
		Columns: []Column{
			{Name: ColumnID, Kind: KindText, Key: true},
			{Name: ColumnName, Kind: KindText},
			{Name: ColumnClass, Kind: KindText},
		},
		Fill: UnknownValue,
	}

	SubjectsPolicy = Policy{
		Table: domain.TableSubjects,
		Columns: []Column{
			{Name: ColumnID, Kind: KindText, Key: true},
			{Name: ColumnName, Kind: KindText},
		},
		Fill: UnknownValue,
	}

	GradesPolicy = Policy{
		Table: domain.TableGrades,
		Columns: []Column{
			{Name: ColumnStudentID, Kind: KindText, Key: true},
			{Name: ColumnSubjectID, Kind: KindText, Key: true},
			{Name: ColumnGrade, Kind: KindFloat},
		},
		Fill: "0",
	}

	AttendancePolicy = Policy{
		Table: domain.TableAttendance,
		Columns: []Column{
			{Name: ColumnStudentID, Kind: KindText, Key: true},
			{Name: ColumnSubjectID, Kind: KindText, Key: true},
			{Name: ColumnClassesAttended, Kind: KindInt},
			{Name: ColumnTotalClasses, Kind: KindInt},
		},
		Fill: "0",
	}
)

// Policies lists the table policies in processing order
var Policies = []Policy{StudentsPolicy, SubjectsPolicy, GradesPolicy, AttendancePolicy}

// Header returns the required column names in order
func (p Policy) Header() []string {
	header := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		header[i] = c.Name
	}
	return header
}

// column returns the policy entry for name, if any
func (p Policy) column(name string) (Column, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
