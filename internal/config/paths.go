package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds every resolved file location used by the tools
type Paths struct {
	BaseDir        string
	DataDir        string
	ReportsDir     string
	LogsDir        string
	ScreenshotsDir string

	// Raw inputs
	StudentsCSV   string
	SubjectsCSV   string
	GradesCSV     string
	AttendanceCSV string

	// Cleaned outputs
	CleanStudentsCSV   string
	CleanSubjectsCSV   string
	CleanGradesCSV     string
	CleanAttendanceCSV string

	// Reports
	CleaningReportCSV  string
	CleaningReportXLSX string
	SmokeTestLog       string
}

// NewPaths resolves the default layout under baseDir.
// An empty baseDir means the working directory.
func NewPaths(baseDir string) (*Paths, error) {
	return NewPathsFromConfig(PathsConfig{
		BaseDir:    baseDir,
		DataDir:    DataDirName,
		ReportsDir: ReportsDirName,
		LogsDir:    LogsDirName,
	})
}

// NewPathsFromConfig resolves the layout described by cfg
func NewPathsFromConfig(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	p := &Paths{
		BaseDir:    base,
		DataDir:    resolveDir(base, cfg.DataDir, DataDirName),
		ReportsDir: resolveDir(base, cfg.ReportsDir, ReportsDirName),
		LogsDir:    resolveDir(base, cfg.LogsDir, LogsDirName),
	}
	p.ScreenshotsDir = filepath.Join(p.ReportsDir, ScreenshotsDirName)

	p.StudentsCSV = filepath.Join(p.DataDir, StudentsFile)
	p.SubjectsCSV = filepath.Join(p.DataDir, SubjectsFile)
	p.GradesCSV = filepath.Join(p.DataDir, GradesFile)
	p.AttendanceCSV = filepath.Join(p.DataDir, AttendanceFile)

	p.CleanStudentsCSV = filepath.Join(p.DataDir, CleanStudentsFile)
	p.CleanSubjectsCSV = filepath.Join(p.DataDir, CleanSubjectsFile)
	p.CleanGradesCSV = filepath.Join(p.DataDir, CleanGradesFile)
	p.CleanAttendanceCSV = filepath.Join(p.DataDir, CleanAttendanceFile)

	p.CleaningReportCSV = filepath.Join(p.ReportsDir, CleaningReportFile)
	p.CleaningReportXLSX = filepath.Join(p.ReportsDir, CleaningReportWorkbookFile)
	p.SmokeTestLog = filepath.Join(p.ReportsDir, SmokeTestLogFile)

	return p, nil
}

func resolveDir(base, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}

// EnsureDirectories creates the writable directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.ReportsDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// RawInputs returns the four raw input files in processing order
func (p *Paths) RawInputs() []string {
	return []string{p.StudentsCSV, p.SubjectsCSV, p.GradesCSV, p.AttendanceCSV}
}

// CleanedOutputs returns the four cleaned files in processing order
func (p *Paths) CleanedOutputs() []string {
	return []string{p.CleanStudentsCSV, p.CleanSubjectsCSV, p.CleanGradesCSV, p.CleanAttendanceCSV}
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetScreenshotPath returns the full path for a screenshot
func (p *Paths) GetScreenshotPath(filename string) string {
	return filepath.Join(p.ScreenshotsDir, filename)
}

// LogPathResolution logs the resolved layout for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("report_files",
			slog.String("cleaning_report_csv", p.CleaningReportCSV),
			slog.String("cleaning_report_xlsx", p.CleaningReportXLSX),
		))
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
