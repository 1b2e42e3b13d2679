package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"escolacli/pkg/contracts/domain"
)

// Sheet names of the generated workbooks
const (
	ReportSheet     = "relatorio"
	GradesSheet     = "Notas"
	AttendanceSheet = "Presenca"
)

// defaultSheet is the sheet a new excelize file starts with
const defaultSheet = "Sheet1"

var (
	gradesHeader     = []string{"aluno_id", "aluno", "nota"}
	attendanceHeader = []string{"aluno_id", "aluno", "aulas_presencas", "total_aulas", "percentual_presenca"}
)

type sheetData struct {
	name   string
	header []string
	rows   [][]interface{}
}

// WriteReportWorkbook writes the cleaning report to an .xlsx file with a single sheet
func WriteReportWorkbook(path string, report domain.CleaningReport) error {
	sheet := sheetData{name: ReportSheet, header: ReportHeader}
	for _, table := range domain.Tables {
		row, ok := report.Row(table)
		if !ok {
			continue
		}
		sheet.rows = append(sheet.rows, []interface{}{
			row.Table, row.DuplicatesRemoved, row.MissingAfterFill, row.FinalRecords,
		})
	}

	f, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// WriteViewWorkbook writes the grades and attendance of a filtered view
// as two sheets to w
func WriteViewWorkbook(w io.Writer, view domain.FilteredView) error {
	grades := sheetData{name: GradesSheet, header: gradesHeader}
	for _, g := range view.Grades {
		grades.rows = append(grades.rows, []interface{}{g.StudentID, g.StudentName, g.Value})
	}

	attendance := sheetData{name: AttendanceSheet, header: attendanceHeader}
	for _, a := range view.Attendance {
		var pct interface{} = ""
		if a.Percentage != nil {
			pct = *a.Percentage
		}
		attendance.rows = append(attendance.rows, []interface{}{
			a.StudentID, a.StudentName, a.ClassesAttended, a.TotalClasses, pct,
		})
	}

	f, err := newWorkbook(grades, attendance)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ViewWorkbookName returns the download file name for a selection
func ViewWorkbookName(selection domain.Selection) string {
	return fmt.Sprintf("dashboard_%s_%s.xlsx", sanitizeFileName(selection.Class), sanitizeFileName(selection.Subject))
}

func sanitizeFileName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

func newWorkbook(sheets ...sheetData) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			err = f.SetSheetName(defaultSheet, sheet.name)
		} else {
			_, err = f.NewSheet(sheet.name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}

		if err := writeSheet(f, sheet, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeSheet(f *excelize.File, sheet sheetData, headerStyle int) error {
	header := make([]interface{}, len(sheet.header))
	for i, h := range sheet.header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet.name, err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(sheet.header))
	if err != nil {
		return fmt.Errorf("invalid column count for %s: %w", sheet.name, err)
	}
	if err := f.SetCellStyle(sheet.name, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet.name, err)
	}
	if err := f.SetColWidth(sheet.name, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns of %s: %w", sheet.name, err)
	}

	for i, row := range sheet.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet.name, err)
		}
	}
	return nil
}
