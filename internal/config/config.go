package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Smoke     SmokeConfig     `yaml:"smoke" envconfig:"SMOKE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration.
// Relative directories are resolved against BaseDir.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// DashboardConfig contains the grouping parameters of the dashboard.
// RequireDataset makes a missing or invalid cleaned dataset fatal at startup.
type DashboardConfig struct {
	ClusterSeed    uint64 `yaml:"cluster_seed" envconfig:"CLUSTER_SEED"`
	MaxClusters    int    `yaml:"max_clusters" envconfig:"MAX_CLUSTERS"`
	RequireDataset bool   `yaml:"require_dataset" envconfig:"REQUIRE_DATASET"`
}

// SmokeConfig contains the defaults of the browser smoke test
type SmokeConfig struct {
	URL        string        `yaml:"url" envconfig:"URL"`
	Class      string        `yaml:"class" envconfig:"CLASS"`
	Subject    string        `yaml:"subject" envconfig:"SUBJECT"`
	Headless   bool          `yaml:"headless" envconfig:"HEADLESS"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	ScrollStep int           `yaml:"scroll_step" envconfig:"SCROLL_STEP"`
	Scrolls    int           `yaml:"scrolls" envconfig:"SCROLLS"`
}

// Load loads configuration in layers: defaults, then config file, then
// environment variables (a .env file in the working directory is honoured).
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Unset variables leave the lower layers untouched
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads variables from a dotenv file when it exists.
// Variables already present in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// loadFromFile overlays YAML configuration onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths makes the base directory absolute, defaulting to the working directory
func (c *Config) resolvePaths() error {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory %s: %w", base, err)
	}
	c.Paths.BaseDir = abs
	return nil
}

// GetPaths resolves all file locations from the configured directories
func (c *Config) GetPaths() (*Paths, error) {
	return NewPathsFromConfig(c.Paths)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive when enabled")
	}

	if c.Dashboard.MaxClusters <= 0 {
		return fmt.Errorf("dashboard max clusters must be positive: %d", c.Dashboard.MaxClusters)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	// JSON only, dual output unless explicitly file-only
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(c.Paths.LogsDir, DefaultLogFile)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "both",
			FilePath:    "logs/app.log",
			Development: false,
		},
		Paths: PathsConfig{
			DataDir:    DataDirName,
			ReportsDir: ReportsDirName,
			LogsDir:    LogsDirName,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
		Dashboard: DashboardConfig{
			ClusterSeed:    DefaultClusterSeed,
			MaxClusters:    DefaultMaxClusters,
			RequireDataset: true,
		},
		Smoke: SmokeConfig{
			URL:        "http://localhost:8080/",
			Class:      "2025B",
			Subject:    "Português",
			Headless:   true,
			Timeout:    60 * time.Second,
			ScrollStep: 400,
			Scrolls:    5,
		},
	}
}
