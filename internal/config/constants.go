package config

import "time"

// Application constants for the school data pipeline
const (
	// Application Info
	AppName    = "Dashboard Escolar"
	AppVersion = "1.0.0"

	// Environment variable prefix (ESCOLA_SERVER_PORT, ESCOLA_PATHS_BASE_DIR, ...)
	EnvPrefix = "ESCOLA"

	// Directories (relative to the base directory)
	DataDirName        = "data"
	ReportsDirName     = "reports"
	LogsDirName        = "logs"
	ScreenshotsDirName = "screenshots"

	// Raw input files
	StudentsFile   = "alunos.csv"
	SubjectsFile   = "disciplinas.csv"
	GradesFile     = "notas.csv"
	AttendanceFile = "presenca.csv"

	// Cleaned output files
	CleanStudentsFile   = "alunos_tratados.csv"
	CleanSubjectsFile   = "disciplinas_tratadas.csv"
	CleanGradesFile     = "notas_tratadas.csv"
	CleanAttendanceFile = "presenca_tratada.csv"

	// Reports
	CleaningReportFile         = "relatorio_tratamento.csv"
	CleaningReportWorkbookFile = "relatorio_tratamento.xlsx"
	SmokeTestLogFile           = "smoketest.log"
	DefaultLogFile             = "app.log"

	// Grouping
	DefaultClusterSeed = 42
	DefaultMaxClusters = 3

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// Selection limits
	MaxSelectionLength = 128
)
