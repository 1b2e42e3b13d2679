package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"escolacli/internal/config"
	"escolacli/internal/exporter"
	"escolacli/internal/infrastructure"
	"escolacli/pkg/contracts/domain"
)

// Pipeline reads the four raw tables, cleans them and writes the cleaned
// tables and the cleaning report
type Pipeline struct {
	paths    *config.Paths
	writer   *exporter.CSVWriter
	logger   *slog.Logger
	tracer   trace.Tracer
	workbook bool
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithWorkbook also writes the report as an .xlsx workbook
func WithWorkbook(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.workbook = enabled
	}
}

// WithTracer overrides the global tracer
func WithTracer(tracer trace.Tracer) PipelineOption {
	return func(p *Pipeline) {
		p.tracer = tracer
	}
}

// NewPipeline creates a cleaning pipeline over paths
func NewPipeline(paths *config.Paths, logger *slog.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "cleaner")

	p := &Pipeline{
		paths:  paths,
		writer: exporter.NewCSVWriter(paths, logger),
		logger: logger,
		tracer: otel.Tracer("escolacli/dataprocessing"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type tableJob struct {
	policy Policy
	input  string
	output string
	table  Table
}

// Run executes the pipeline. Nothing is written unless every table was
// read and cleaned.
func (p *Pipeline) Run(ctx context.Context) (domain.CleaningReport, error) {
	ctx, span := p.tracer.Start(ctx, "cleaner.run")
	defer span.End()

	start := time.Now()
	jobs := []*tableJob{
		{policy: StudentsPolicy, input: p.paths.StudentsCSV, output: p.paths.CleanStudentsCSV},
		{policy: SubjectsPolicy, input: p.paths.SubjectsCSV, output: p.paths.CleanSubjectsCSV},
		{policy: GradesPolicy, input: p.paths.GradesCSV, output: p.paths.CleanGradesCSV},
		{policy: AttendancePolicy, input: p.paths.AttendanceCSV, output: p.paths.CleanAttendanceCSV},
	}

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return domain.CleaningReport{}, err
		}
		table, err := ReadTable(job.input, job.policy.Table)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to read input",
				slog.String("table", job.policy.Table),
				slog.String("path", job.input),
				slog.String("error", err.Error()))
			return domain.CleaningReport{}, err
		}
		job.table = table
	}

	report := domain.CleaningReport{Rows: make([]domain.CleaningReportRow, 0, len(jobs))}
	for _, job := range jobs {
		cleaned, row, err := Clean(job.table, job.policy)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to clean table",
				slog.String("table", job.policy.Table),
				slog.String("error", err.Error()))
			return domain.CleaningReport{}, err
		}

		p.logger.InfoContext(ctx, "Table cleaned",
			slog.String("table", row.Table),
			slog.Int("rows_read", job.table.Len()),
			slog.Int("duplicates_removed", row.DuplicatesRemoved),
			slog.Int("missing_after_fill", row.MissingAfterFill),
			slog.Int("final_records", row.FinalRecords))

		job.table = cleaned
		report.Rows = append(report.Rows, row)
	}

	if err := ctx.Err(); err != nil {
		return domain.CleaningReport{}, err
	}
	if err := p.write(ctx, jobs, report); err != nil {
		return domain.CleaningReport{}, err
	}

	span.SetAttributes(attribute.Int("tables", len(jobs)))
	p.logger.InfoContext(ctx, "Cleaning completed",
		slog.String("report", p.paths.CleaningReportCSV),
		slog.Duration("duration", time.Since(start)))

	return report, nil
}

func (p *Pipeline) write(ctx context.Context, jobs []*tableJob, report domain.CleaningReport) error {
	if err := p.paths.EnsureDirectories(); err != nil {
		return err
	}

	for _, job := range jobs {
		if err := p.writer.WriteTable(job.output, job.table.Header, job.table.Rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", job.output, err)
		}
		p.logger.DebugContext(ctx, "Cleaned table written",
			slog.String("table", job.policy.Table),
			slog.String("path", job.output))
	}

	if err := p.writer.WriteCleaningReport(p.paths.CleaningReportCSV, report); err != nil {
		return fmt.Errorf("failed to write cleaning report: %w", err)
	}

	if p.workbook {
		if err := exporter.WriteReportWorkbook(p.paths.CleaningReportXLSX, report); err != nil {
			return fmt.Errorf("failed to write cleaning report workbook: %w", err)
		}
		p.logger.InfoContext(ctx, "Cleaning report workbook written",
			slog.String("path", p.paths.CleaningReportXLSX))
	}

	return nil
}
