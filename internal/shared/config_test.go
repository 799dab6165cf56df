package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != DefaultBaseURL {
			t.Errorf("expected base url %s, got %s", DefaultBaseURL, config.API.BaseURL)
		}
		if config.State.Path != "./musicat.db" {
			t.Errorf("expected state path ./musicat.db, got %s", config.State.Path)
		}
		if config.UI.Locale != "en" {
			t.Errorf("expected locale en, got %s", config.UI.Locale)
		}
		if config.API.RequestsPerSecond != 0 {
			t.Errorf("expected limiter disabled by default, got %v", config.API.RequestsPerSecond)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.State.Path != DefaultConfig().State.Path {
			t.Errorf("created config state path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[api]
base_url = "http://catalog.test/api"
requests_per_second = 2.5

[ui]
locale = "ru"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "http://catalog.test/api" {
			t.Errorf("unexpected base url %s", config.API.BaseURL)
		}
		if config.API.RequestsPerSecond != 2.5 {
			t.Errorf("unexpected requests per second %v", config.API.RequestsPerSecond)
		}
		if config.UI.Locale != "ru" {
			t.Errorf("unexpected locale %s", config.UI.Locale)
		}
		if config.State.Path != "./musicat.db" {
			t.Errorf("missing keys should keep defaults, got state path %s", config.State.Path)
		}
	})

	t.Run("LoadConfig rejects unknown locale", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[ui]\nlocale = \"de\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv(EnvAPIURL, "http://env.test/api")
		t.Setenv(EnvStatePath, ":memory:")
		t.Setenv(EnvLocale, "ru")
		t.Setenv(EnvLogLevel, "debug")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.API.BaseURL != "http://env.test/api" {
			t.Errorf("env base url not applied: %s", config.API.BaseURL)
		}
		if config.State.Path != ":memory:" {
			t.Errorf("env state path not applied: %s", config.State.Path)
		}
		if config.UI.Locale != "ru" || config.Log.Level != "debug" {
			t.Errorf("env ui/log overrides not applied: %+v %+v", config.UI, config.Log)
		}
	})
}
