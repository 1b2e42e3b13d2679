package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp switches the working directory to a fresh temp dir for the test
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
	return dir
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		fileContent string
		dotEnv      string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, uint64(42), cfg.Dashboard.ClusterSeed)
				assert.Equal(t, 3, cfg.Dashboard.MaxClusters)
				assert.Equal(t, "2025B", cfg.Smoke.Class)
				assert.Equal(t, "Português", cfg.Smoke.Subject)
				assert.True(t, filepath.IsAbs(cfg.Paths.BaseDir))
			},
		},
		{
			name: "custom environment variables",
			env: map[string]string{
				"ESCOLA_SERVER_PORT":              "9090",
				"ESCOLA_SERVER_READ_TIMEOUT":      "30s",
				"ESCOLA_SECURITY_ALLOWED_ORIGINS": "http://example.com,https://example.com",
				"ESCOLA_SECURITY_RATE_LIMIT_RPS":  "5",
				"ESCOLA_LOGGING_LEVEL":            "debug",
				"ESCOLA_LOGGING_FORMAT":           "text",
				"ESCOLA_DASHBOARD_CLUSTER_SEED":   "7",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 5.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format) // validate() forces json
				assert.Equal(t, uint64(7), cfg.Dashboard.ClusterSeed)
			},
		},
		{
			name:    "invalid port number",
			env:     map[string]string{"ESCOLA_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			env:     map[string]string{"ESCOLA_SERVER_READ_TIMEOUT": "-5s"},
			wantErr: true,
		},
		{
			name:    "unparseable value",
			env:     map[string]string{"ESCOLA_SERVER_PORT": "eighty"},
			wantErr: true,
		},
		{
			name:    "unknown logging level",
			env:     map[string]string{"ESCOLA_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name: "config file with environment override",
			env: map[string]string{
				"ESCOLA_SERVER_PORT":   "7070",
				"ESCOLA_LOGGING_LEVEL": "warn",
			},
			fileContent: `
server:
  port: 6060
  read_timeout: 20s
logging:
  level: error
dashboard:
  max_clusters: 2
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "warn", cfg.Logging.Level)
				// file values survive where env is unset
				assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 2, cfg.Dashboard.MaxClusters)
				// defaults survive where neither sets a value
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
			},
		},
		{
			name:   "dotenv file",
			dotEnv: "ESCOLA_SERVER_PORT=8181\nESCOLA_SMOKE_CLASS=2025A\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8181, cfg.Server.Port)
				assert.Equal(t, "2025A", cfg.Smoke.Class)
			},
		},
		{
			name:   "environment wins over dotenv",
			env:    map[string]string{"ESCOLA_SERVER_PORT": "8282"},
			dotEnv: "ESCOLA_SERVER_PORT=8181\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8282, cfg.Server.Port)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdirTemp(t)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.fileContent != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.fileContent), 0644))
			}
			if tt.dotEnv != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(tt.dotEnv), 0644))
				// godotenv writes into the process env; clear what it set
				t.Cleanup(func() {
					for _, k := range []string{"ESCOLA_SERVER_PORT", "ESCOLA_SMOKE_CLASS"} {
						if _, ok := tt.env[k]; !ok {
							_ = os.Unsetenv(k)
						}
					}
				})
			}

			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

// TestLoadFromFile tests the loadFromFile overlay
func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "valid YAML config",
			fileContent: `
server:
  port: 9000
  read_timeout: 25s
security:
  allowed_origins: ["http://test.com"]
paths:
  base_dir: /srv/escola
  data_dir: dados
websocket:
  read_buffer_size: 4096
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 25*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://test.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "/srv/escola", cfg.Paths.BaseDir)
				assert.Equal(t, "dados", cfg.Paths.DataDir)
				assert.Equal(t, 4096, cfg.WebSocket.ReadBufferSize)
			},
		},
		{
			name:        "invalid YAML syntax",
			fileContent: "invalid: yaml: content: [unclosed",
			wantErr:     true,
		},
		{
			name: "partial config keeps defaults",
			fileContent: `
server:
  port: 8888
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8888, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "reports", cfg.Paths.ReportsDir)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.fileContent), 0644))

			cfg := Default()
			err := loadFromFile(configFile, cfg)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}

	t.Run("non-existent file", func(t *testing.T) {
		assert.Error(t, loadFromFile("/non/existent/file.yaml", Default()))
	})
}

// TestValidate tests the validate function
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid configuration",
			mutate: func(*Config) {},
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
			errMsg:  "invalid server port: 0",
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.Server.Port = 99999 },
			wantErr: true,
			errMsg:  "invalid server port: 99999",
		},
		{
			name:    "invalid write timeout",
			mutate:  func(c *Config) { c.Server.WriteTimeout = 0 },
			wantErr: true,
			errMsg:  "server write timeout must be positive",
		},
		{
			name:    "rate limit without rps",
			mutate:  func(c *Config) { c.Security.RateLimit.RPS = 0 },
			wantErr: true,
			errMsg:  "rate limit rps must be positive",
		},
		{
			name: "disabled rate limit ignores rps",
			mutate: func(c *Config) {
				c.Security.RateLimit.Enabled = false
				c.Security.RateLimit.RPS = 0
			},
		},
		{
			name:    "zero max clusters",
			mutate:  func(c *Config) { c.Dashboard.MaxClusters = 0 },
			wantErr: true,
			errMsg:  "max clusters must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("logging output is normalised", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Format = "text"
		cfg.Logging.Output = "syslog"
		cfg.Logging.FilePath = ""
		cfg.Paths.LogsDir = "logs"

		require.NoError(t, cfg.validate())
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, "both", cfg.Logging.Output)
		assert.Equal(t, filepath.Join("logs", "app.log"), cfg.Logging.FilePath)
	})
}

func TestGetConfigFilePath(t *testing.T) {
	t.Run("explicit file from environment", func(t *testing.T) {
		t.Setenv("ESCOLA_CONFIG_FILE", "/etc/escola/config.yaml")
		assert.Equal(t, "/etc/escola/config.yaml", getConfigFilePath())
	})

	t.Run("configs directory", func(t *testing.T) {
		dir := chdirTemp(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), []byte("{}"), 0644))
		assert.Equal(t, "configs/config.yaml", getConfigFilePath())
	})

	t.Run("no file", func(t *testing.T) {
		chdirTemp(t)
		assert.Equal(t, "", getConfigFilePath())
	})
}
