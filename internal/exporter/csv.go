package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"escolacli/internal/config"
	"escolacli/pkg/contracts/domain"
)

// CSVWriter writes cleaned tables and the cleaning report. Every file is
// written to a temporary sibling and renamed into place, so a reader never
// sees a partial table.
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteTable replaces filePath with header followed by rows.
// A relative filePath resolves to the reports directory.
func (w *CSVWriter) WriteTable(filePath string, header []string, rows [][]string) error {
	fullPath := w.resolvePath(filePath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeRecords(tmp, header, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(fullPath), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", fullPath, err)
	}

	w.logger.Debug("CSV file written",
		slog.String("path", fullPath),
		slog.Int("records", len(rows)))
	return nil
}

// WriteCleaningReport writes the report rows in table order
func (w *CSVWriter) WriteCleaningReport(filePath string, report domain.CleaningReport) error {
	return w.WriteTable(filePath, ReportHeader, ReportRecords(report))
}

func writeRecords(f *os.File, header []string, rows [][]string) error {
	writer := csv.NewWriter(f)
	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}
