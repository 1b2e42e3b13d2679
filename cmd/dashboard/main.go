// Command dashboard serves the school dashboard over HTTP.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"escolacli/internal/app"
	"escolacli/internal/config"
	"escolacli/internal/infrastructure"
	"escolacli/pkg/contracts"
)

const logFileName = "dashboard.log"

type options struct {
	port       int
	baseDir    string
	allowEmpty bool
	version    bool
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&opts.port, "port", 0, "HTTP port (overrides ESCOLA_SERVER_PORT)")
	fs.StringVar(&opts.baseDir, "base", "", "base directory holding data/ and reports/")
	fs.BoolVar(&opts.allowEmpty, "allow-empty", false, "start without a cleaned dataset and wait for a reload")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.port < 0 || opts.port > 65535 {
		return options{}, fmt.Errorf("invalid port: %d", opts.port)
	}
	return opts, nil
}

// apply overlays command-line flags on the loaded configuration
func (o options) apply(cfg *config.Config) {
	if o.port > 0 {
		cfg.Server.Port = o.port
	}
	if o.baseDir != "" {
		cfg.Paths.BaseDir = o.baseDir
	}
	if o.allowEmpty {
		cfg.Dashboard.RequireDataset = false
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	if opts.version {
		fmt.Println(contracts.GetVersionString())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	opts.apply(cfg)

	paths, err := cfg.GetPaths()
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if cfg.Logging.FilePath == config.Default().Logging.FilePath {
		cfg.Logging.FilePath = paths.GetLogPath(logFileName)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to start dashboard", slog.String("error", err.Error()))
		_ = infrastructure.CloseLogFile()
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		logger.Error("Dashboard stopped with error", slog.String("error", err.Error()))
		_ = infrastructure.CloseLogFile()
		os.Exit(1)
	}
	_ = infrastructure.CloseLogFile()
}
