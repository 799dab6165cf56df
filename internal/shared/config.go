package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override file configuration.
const (
	EnvAPIURL    = "MUSICAT_API_URL"
	EnvStatePath = "MUSICAT_STATE_PATH"
	EnvLocale    = "MUSICAT_LOCALE"
	EnvLogLevel  = "MUSICAT_LOG_LEVEL"
)

// DefaultBaseURL is the API root used when nothing else is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API   APIConfig   `toml:"api"`
	State StateConfig `toml:"state"`
	UI    UIConfig    `toml:"ui"`
	Log   LogConfig   `toml:"log"`
}

// APIConfig describes how to reach the catalog service.
type APIConfig struct {
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	UserAgent         string  `toml:"user_agent"`
}

// StateConfig contains settings for the persisted client state database.
type StateConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	Locale  string `toml:"locale"`
	LogFile string `toml:"log_file"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: api.requests_per_second must not be negative", ErrInvalidConfig)
	}
	switch c.UI.Locale {
	case "", "en", "ru":
	default:
		return fmt.Errorf("%w: unsupported ui.locale %q", ErrInvalidConfig, c.UI.Locale)
	}
	return nil
}

// ApplyEnv loads an optional .env file from the working directory and applies
// MUSICAT_* overrides on top of c.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvStatePath); v != "" {
		c.State.Path = v
	}
	if v := os.Getenv(EnvLocale); v != "" {
		c.UI.Locale = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}
