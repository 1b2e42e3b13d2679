// Command cleaner deduplicates, fills and type-coerces the four school CSV
// tables under data/ and writes the cleaned copies plus a cleaning report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"escolacli/internal/config"
	"escolacli/internal/dataprocessing"
	"escolacli/internal/exporter"
	"escolacli/internal/infrastructure"
	"escolacli/internal/validation"
	"escolacli/pkg/contracts/domain"
)

const logFileName = "cleaner.log"

type options struct {
	baseDir  string
	workbook bool
	trace    bool
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("cleaner", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.baseDir, "base", "", "base directory holding data/ and reports/ (defaults to the configured base)")
	fs.BoolVar(&opts.workbook, "xlsx", false, "also write reports/relatorio_tratamento.xlsx")
	fs.BoolVar(&opts.trace, "trace", false, "print OpenTelemetry spans to stdout")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if opts.baseDir != "" {
		cfg.Paths.BaseDir = opts.baseDir
	}

	paths, err := cfg.GetPaths()
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create directories", "error", err)
		os.Exit(1)
	}

	configureLogging(cfg, paths)
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, paths, opts, logger, os.Stdout); err != nil {
		logger.Error("Cleaning failed", slog.String("error", err.Error()))
		stop()
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
}

// configureLogging points the logger at logs/cleaner.log. Stdout carries
// the report, so "both" is narrowed to the file.
func configureLogging(cfg *config.Config, paths *config.Paths) {
	cfg.Logging.FilePath = paths.GetLogPath(logFileName)
	if cfg.Logging.Output == "both" {
		cfg.Logging.Output = "file"
	}
}

// validateInputs fails before any output is written when data/ or a raw
// table is missing or a required column is absent
func validateInputs(paths *config.Paths, logger *slog.Logger) error {
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(paths.DataDir); err != nil {
		return err
	}
	if err := validator.ValidateTables(validation.RawTables(paths)); err != nil {
		return err
	}
	return validator.ValidateOutputDirectory(paths.ReportsDir)
}

// run cleans the raw tables and prints the report to stdout
func run(ctx context.Context, paths *config.Paths, opts options, logger *slog.Logger, stdout io.Writer) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	pipelineOpts := []dataprocessing.PipelineOption{dataprocessing.WithWorkbook(opts.workbook)}

	if opts.trace {
		otelCfg := infrastructure.DefaultOTelConfig()
		otelCfg.ServiceName = "escola-cleaner"
		otelCfg.TraceExporter = "stdout"
		otelCfg.TraceWriter = stdout
		otelCfg.EnableMetrics = false

		providers, err := infrastructure.InitializeOTel(otelCfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() { _ = providers.Shutdown(context.Background()) }()
		pipelineOpts = append(pipelineOpts, dataprocessing.WithTracer(providers.Tracer))
	}

	logger.InfoContext(ctx, "Starting cleaner",
		slog.String("data_dir", paths.DataDir),
		slog.String("reports_dir", paths.ReportsDir),
		slog.Bool("xlsx", opts.workbook))

	if err := validateInputs(paths, logger); err != nil {
		return err
	}

	report, err := dataprocessing.NewPipeline(paths, logger, pipelineOpts...).Run(ctx)
	if err != nil {
		return err
	}

	return printReport(stdout, report)
}

// printReport renders the cleaning report as an aligned table
func printReport(w io.Writer, report domain.CleaningReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range exporter.ReportHeader {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, rec := range exporter.ReportRecords(report) {
		for i, cell := range rec {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
