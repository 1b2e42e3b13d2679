// Package config provides centralized configuration management for the
// school data pipeline. It loads configuration from multiple sources,
// validates it, and resolves every file location the tools read or write.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//  1. Default values (Default)
//  2. A YAML file (config.yaml, configs/config.yaml or ESCOLA_CONFIG_FILE)
//  3. A .env file in the working directory
//  4. Environment variables
//
// # Environment Variables
//
// All environment variables use the ESCOLA_ prefix followed by the section:
//
//	ESCOLA_SERVER_PORT=8080
//	ESCOLA_PATHS_BASE_DIR=/srv/escola
//	ESCOLA_LOGGING_LEVEL=debug
//	ESCOLA_DASHBOARD_CLUSTER_SEED=42
//	ESCOLA_SMOKE_URL=http://localhost:8080/
//
// # Path Management
//
// Paths is the single source of truth for file locations. Every path is
// derived from the base directory (the working directory by default):
//
//	paths, err := config.NewPaths(baseDir)
//	if err != nil {
//	    return err
//	}
//	if err := paths.EnsureDirectories(); err != nil {
//	    return err
//	}
//	raw := paths.StudentsCSV          // data/alunos.csv
//	clean := paths.CleanStudentsCSV   // data/alunos_tratados.csv
//	report := paths.CleaningReportCSV // reports/relatorio_tratamento.csv
package config
