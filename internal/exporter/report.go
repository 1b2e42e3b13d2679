package exporter

import (
	"escolacli/pkg/contracts/domain"
)

// ReportHeader is the header of relatorio_tratamento.csv
var ReportHeader = []string{"arquivo", "duplicatas_removidas", "valores_nulos_tratados", "registros_final"}

// ReportRecords returns the report rows in the fixed table order.
// Tables absent from the report are skipped.
func ReportRecords(report domain.CleaningReport) [][]string {
	records := make([][]string, 0, len(domain.Tables))
	for _, table := range domain.Tables {
		row, ok := report.Row(table)
		if !ok {
			continue
		}
		records = append(records, []string{
			row.Table,
			formatInt(row.DuplicatesRemoved),
			formatInt(row.MissingAfterFill),
			formatInt(row.FinalRecords),
		})
	}
	return records
}
