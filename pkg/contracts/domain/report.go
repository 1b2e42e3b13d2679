package domain

// Table names used in the cleaning report, in processing order
const (
	TableStudents   = "alunos"
	TableSubjects   = "disciplinas"
	TableGrades     = "notas"
	TableAttendance = "presenca"
)

// Tables lists the table names in report order
var Tables = []string{TableStudents, TableSubjects, TableGrades, TableAttendance}

// CleaningReportRow summarizes the cleaning of one table
type CleaningReportRow struct {
	Table             string `json:"arquivo"`
	DuplicatesRemoved int    `json:"duplicatas_removidas"`
	MissingAfterFill  int    `json:"valores_nulos_tratados"`
	FinalRecords      int    `json:"registros_final"`
}

// CleaningReport is the per-table summary of a cleaning run
type CleaningReport struct {
	Rows []CleaningReportRow `json:"rows"`
}

// Row returns the report row for table
func (r CleaningReport) Row(table string) (CleaningReportRow, bool) {
	for _, row := range r.Rows {
		if row.Table == table {
			return row, true
		}
	}
	return CleaningReportRow{}, false
}
