package dataprocessing

import (
	"math"
	"strconv"
	"strings"

	"escolacli/internal/errors"
	"escolacli/pkg/contracts/domain"
)

// missingSentinel stands in for any missing token when rows are compared
const missingSentinel = "\x00<missing>"

// Clean removes exact duplicate rows, fills missing cells and coerces typed
// columns. The first occurrence of a duplicate is kept and row order is
// preserved. Columns the policy does not name are kept as text.
func Clean(table Table, policy Policy) (Table, domain.CleaningReportRow, error) {
	report := domain.CleaningReportRow{Table: policy.Table}

	columns := make([]Column, len(table.Header))
	for i, name := range table.Header {
		if c, ok := policy.column(name); ok {
			columns[i] = c
		} else {
			columns[i] = Column{Name: name, Kind: KindText}
		}
	}
	for _, required := range policy.Columns {
		if table.ColumnIndex(required.Name) < 0 {
			return Table{}, report, errors.NewSchemaError(policy.Table, 0, required.Name, "required column is missing")
		}
	}

	cleaned := Table{
		Name:   policy.Table,
		Header: append([]string(nil), table.Header...),
		Rows:   make([][]string, 0, len(table.Rows)),
	}

	seen := make(map[string]struct{}, len(table.Rows))
	for i, row := range table.Rows {
		key := rowKey(row, columns)
		if _, dup := seen[key]; dup {
			report.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}

		out := make([]string, len(row))
		for j, cell := range row {
			if isMissingIn(cell, columns[j]) {
				cell = policy.Fill
			}

			value, err := coerce(cell, columns[j].Kind)
			if err != nil {
				// Row numbers count the header as row 1
				return Table{}, report, errors.NewSchemaError(policy.Table, i+2, columns[j].Name, err.Error())
			}
			out[j] = value
		}
		cleaned.Rows = append(cleaned.Rows, out)
	}

	report.MissingAfterFill = countMissing(cleaned)
	report.FinalRecords = cleaned.Len()
	return cleaned, report, nil
}

// rowKey builds the comparison key of a row.
// Missing tokens compare equal, numeric and key columns compare by value.
func rowKey(row []string, columns []Column) string {
	var b strings.Builder
	for i, cell := range row {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		switch {
		case isMissingIn(cell, columns[i]):
			b.WriteString(missingSentinel)
		case columns[i].Key:
			b.WriteString(CanonicalKey(cell))
		case columns[i].Kind != KindText:
			if v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
				b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			} else {
				b.WriteString(cell)
			}
		default:
			b.WriteString(cell)
		}
	}
	return b.String()
}

func countMissing(t Table) int {
	count := 0
	for _, row := range t.Rows {
		for _, cell := range row {
			if IsMissing(cell) {
				count++
			}
		}
	}
	return count
}

func coerce(cell string, kind ColumnKind) (string, error) {
	switch kind {
	case KindFloat:
		v, err := parseNumber(cell)
		if err != nil {
			return "", err
		}
		return FormatFloat(v), nil
	case KindInt:
		v, err := ParseInt(cell)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v, 10), nil
	default:
		return cell, nil
	}
}

type coercionError struct {
	value string
	want  string
}

func (e *coercionError) Error() string {
	return "cannot convert " + strconv.Quote(e.value) + " to " + e.want
}

func parseNumber(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &coercionError{value: cell, want: "float"}
	}
	return v, nil
}

// ParseInt parses an integer cell. Integral float text such as "9.0" is accepted.
func ParseInt(cell string) (int64, error) {
	trimmed := strings.TrimSpace(cell)
	if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return v, nil
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) ||
		v > math.MaxInt64 || v < math.MinInt64 {
		return 0, &coercionError{value: cell, want: "integer"}
	}
	return int64(v), nil
}

// FormatFloat writes v the way a float column is written: always with a
// fractional part or an exponent (8 becomes "8.0", 7.5 stays "7.5").
func FormatFloat(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if abs := math.Abs(v); abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// CanonicalKey returns the comparison form of an identifier: integral
// numbers become their integer text ("1.0" becomes "1"), anything else is
// trimmed.
func CanonicalKey(id string) string {
	trimmed := strings.TrimSpace(id)
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return trimmed
	}
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
