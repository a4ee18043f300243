// ABOUTME: Configuration loading and parsing for the principal session client
// ABOUTME: Supports YAML or TOML files with environment variable expansion, defaults and validation

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure returned by Load and Validate.
var ErrInvalid = errors.New("invalid config")

// EnvPath names the environment variable that overrides the config location.
const EnvPath = "PRINCIPAL_SESSION_CONFIG"

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Defaults applied to fields left empty.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 15 * time.Second
	DefaultDriver  = DriverFile
	DefaultLevel   = "info"
	DefaultFormat  = "text"
)

// Config represents the complete client configuration
type Config struct {
	Backend BackendConfig `yaml:"backend" toml:"backend" json:"backend"`
	Storage StorageConfig `yaml:"storage" toml:"storage" json:"storage"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`
}

// BackendConfig describes the HTTP API both principal kinds talk to
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url" json:"base_url"`
	Timeout time.Duration `yaml:"-" toml:"-" json:"-"`
	Retries int           `yaml:"retries" toml:"retries" json:"retries"`

	// Raw string value for unmarshaling
	TimeoutRaw string `yaml:"timeout" toml:"timeout" json:"timeout"`
}

// StorageConfig selects where bearer tokens persist between runs
type StorageConfig struct {
	Driver string `yaml:"driver" toml:"driver" json:"driver"`
	// Path is a directory for the file driver and a database file for sqlite.
	// Empty means the default location under the user config dir.
	Path string `yaml:"path" toml:"path" json:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level"`
	Format string `yaml:"format" toml:"format" json:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPath returns $PRINCIPAL_SESSION_CONFIG when set, otherwise
// config.yaml under the user config directory.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "principal-session", "config.yaml")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Backend.TimeoutRaw == "" {
		return nil
	}
	d, err := time.ParseDuration(cfg.Backend.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing timeout %q: %w", cfg.Backend.TimeoutRaw, err)
	}
	cfg.Backend.Timeout = d
	return nil
}

func (c *Config) applyDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBaseURL
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = DefaultTimeout
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultDriver
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultFormat
	}
}

// Validate checks every section. Failures wrap ErrInvalid.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Backend),
		validation.Field(&c.Storage),
		validation.Field(&c.Logging),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Validate implements validation.Validatable.
func (b BackendConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.BaseURL, validation.Required, validation.By(httpURL)),
		validation.Field(&b.Timeout, validation.Min(time.Millisecond)),
		validation.Field(&b.Retries, validation.Min(0), validation.Max(10)),
	)
}

// Validate implements validation.Validatable.
func (s StorageConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required, validation.In(DriverMemory, DriverFile, DriverSQLite)),
	)
}

// Validate implements validation.Validatable.
func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.In("text", "json")),
	)
}

// httpURL accepts absolute http(s) URLs.
func httpURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("must be an absolute http or https URL")
	}
	return nil
}
