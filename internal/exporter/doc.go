// Package exporter writes tables and reports to disk.
//
// CSVWriter replaces a file atomically with a header and rows. Relative
// paths resolve to the reports directory. The workbook functions build
// .xlsx files with excelize for the cleaning report and for the filtered
// view of the dashboard.
//
//	writer := exporter.NewCSVWriter(paths, logger)
//	err := writer.WriteTable(paths.CleanGradesCSV, header, rows)
//
//	err = exporter.WriteReportWorkbook(paths.CleaningReportXLSX, report)
package exporter
