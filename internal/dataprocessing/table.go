package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"escolacli/internal/errors"
)

const utf8BOM = "\uFEFF"

// missingTokens are the cell values read as missing, besides the empty cell
var missingTokens = map[string]struct{}{
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
	"<NA>": {},
	"#N/A": {},
}

// IsMissing reports whether a cell holds no value.
// Cells are compared as read, so "  " and " NA " are text.
func IsMissing(cell string) bool {
	if cell == "" {
		return true
	}
	_, ok := missingTokens[cell]
	return ok
}

// isMissingIn is IsMissing for a cell of column c.
// Numeric and key columns ignore surrounding blanks.
func isMissingIn(cell string, c Column) bool {
	if c.Key || c.Kind != KindText {
		cell = strings.TrimSpace(cell)
	}
	return IsMissing(cell)
}

// Table is a CSV table held in memory.
// Every row has exactly len(Header) cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of column in the header, or -1
func (t Table) ColumnIndex(column string) int {
	for i, name := range t.Header {
		if name == column {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows
func (t Table) Len() int {
	return len(t.Rows)
}

// Records returns header and rows as a single slice, ready for csv.Writer
func (t Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header)
	records = append(records, t.Rows...)
	return records
}

// ReadTable reads the CSV file at path.
// A file that does not exist is a MISSING_INPUT error.
func ReadTable(path, name string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, errors.NewMissingInputError(path, err)
		}
		return Table{}, errors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	table, err := ParseTable(file, name)
	if err != nil {
		return Table{}, err
	}
	return table, nil
}

// ParseTable reads a CSV table from r.
// Short rows are padded with empty cells; rows wider than the header are rejected.
func ParseTable(r io.Reader, name string) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return Table{}, errors.NewSchemaError(name, 0, "", "file has no header")
	}
	if err != nil {
		return Table{}, errors.NewSchemaError(name, 0, "", err.Error())
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := Table{Name: name, Header: header}
	// Line 1 is the header
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, errors.NewSchemaError(name, row, "", err.Error())
		}

		if len(record) > len(header) {
			return Table{}, errors.NewSchemaError(name, row, "",
				fmt.Sprintf("expected %d fields, got %d", len(header), len(record)))
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}
