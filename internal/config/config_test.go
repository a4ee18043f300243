// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
backend:
  base_url: "https://api.example.com"
  timeout: "5s"
  retries: 2

storage:
  driver: "sqlite"
  path: "/tmp/tokens.db"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2, cfg.Backend.Retries)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/tokens.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_ValidTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[backend]
base_url = "http://127.0.0.1:9000"
timeout = "750ms"

[storage]
driver = "memory"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 750*time.Millisecond, cfg.Backend.Timeout)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, DefaultLevel, cfg.Logging.Level)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_API_URL", "https://gyms.example.com")
	t.Setenv("TEST_TOKEN_DIR", "/var/lib/tokens")

	path := writeConfig(t, "config.yaml", `
backend:
  base_url: "${TEST_API_URL}"
storage:
  driver: file
  path: "${TEST_TOKEN_DIR}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://gyms.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "/var/lib/tokens", cfg.Storage.Path)
}

func TestLoad_UnsetEnvVarFallsBackToDefault(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
backend:
  base_url: "${PRINCIPAL_SESSION_TEST_UNSET_VAR}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.Backend.BaseURL)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "{}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultTimeout, cfg.Backend.Timeout)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"relative url", "backend:\n  base_url: \"api.example.com\"\n"},
		{"ftp url", "backend:\n  base_url: \"ftp://api.example.com\"\n"},
		{"negative retries", "backend:\n  retries: -1\n"},
		{"unknown driver", "storage:\n  driver: \"redis\"\n"},
		{"unknown level", "logging:\n  level: \"trace\"\n"},
		{"unknown format", "logging:\n  format: \"xml\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", "backend:\n  timeout: \"soon\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", "backend: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")

	_, err = Load(writeConfig(t, "config.toml", "[backend\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault(writeConfig(t, "config.yaml", "storage:\n  driver: \"redis\"\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvPath, "/etc/principal-session.yaml")
	assert.Equal(t, "/etc/principal-session.yaml", DefaultPath())

	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/home/test/.config")
	assert.Equal(t, "/home/test/.config/principal-session/config.yaml", DefaultPath())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("EXPAND_A", "alpha")

	assert.Equal(t, "x alpha y", expandEnvVars("x ${EXPAND_A} y"))
	assert.Equal(t, "x  y", expandEnvVars("x ${EXPAND_UNSET_B} y"))
	assert.Equal(t, "$EXPAND_A", expandEnvVars("$EXPAND_A"))
}
