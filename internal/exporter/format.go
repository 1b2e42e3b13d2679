package exporter

import (
	"strconv"
)

// formatFloat formats a float64 value with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatOptionalFloat formats a nullable float, empty when absent
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
