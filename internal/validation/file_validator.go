package validation

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"escolacli/internal/config"
	"escolacli/internal/dataprocessing"
	"escolacli/internal/errors"
)

// FileValidator provides common file validation functions for all executables
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// TableFile pairs a CSV file with the columns it must carry
type TableFile struct {
	Table   string
	Path    string
	Columns []string
}

// RawTables lists the raw input files in processing order
func RawTables(paths *config.Paths) []TableFile {
	return tableFiles(paths.RawInputs())
}

// CleanedTables lists the cleaned files in processing order
func CleanedTables(paths *config.Paths) []TableFile {
	return tableFiles(paths.CleanedOutputs())
}

func tableFiles(files []string) []TableFile {
	out := make([]TableFile, len(dataprocessing.Policies))
	for i, policy := range dataprocessing.Policies {
		out[i] = TableFile{Table: policy.Table, Path: files[i], Columns: policy.Header()}
	}
	return out
}

// ValidateInputDirectory validates that the input directory exists
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return errors.NewMissingInputError(dir, err)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to stat directory %s", dir), err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return errors.NewStorageError(fmt.Sprintf("%s is not a directory", dir), nil)
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is not a directory
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return errors.NewMissingInputError(path, err)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return errors.NewStorageError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}
	return nil
}

// ValidateHeader checks that the CSV file at tf.Path names every required column
func (v *FileValidator) ValidateHeader(tf TableFile) error {
	file, err := os.Open(tf.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewMissingInputError(tf.Path, err)
		}
		return errors.NewStorageError(fmt.Sprintf("failed to open %s", tf.Path), err)
	}
	defer file.Close()

	header, err := csv.NewReader(file).Read()
	if err == io.EOF {
		return errors.NewSchemaError(tf.Table, 0, "", "file has no header")
	}
	if err != nil {
		return errors.NewSchemaError(tf.Table, 0, "", err.Error())
	}

	present := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		present[name] = true
	}

	for _, column := range tf.Columns {
		if !present[column] {
			v.logger.Error("Required column missing",
				slog.String("table", tf.Table),
				slog.String("file", tf.Path),
				slog.String("column", column))
			return errors.NewSchemaError(tf.Table, 0, column, "required column is missing")
		}
	}
	return nil
}

// ValidateTables checks that every file exists and carries its columns.
// The first failure is returned.
func (v *FileValidator) ValidateTables(tables []TableFile) error {
	for _, tf := range tables {
		if err := v.ValidateFile(tf.Path); err != nil {
			return err
		}
		if err := v.ValidateHeader(tf); err != nil {
			return err
		}
	}

	v.logger.Info("Table files validated", slog.Int("files", len(tables)))
	return nil
}

// ValidateCleanedDataset checks the four cleaned files the dashboard reads
func (v *FileValidator) ValidateCleanedDataset(paths *config.Paths) error {
	return v.ValidateTables(CleanedTables(paths))
}
