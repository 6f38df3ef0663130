package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIBaseURL is the production API root.
	DefaultAPIBaseURL = "https://api.tdameritrade.com/v1/"

	// DefaultTimeoutSeconds bounds each command's API calls.
	DefaultTimeoutSeconds = 30

	// DefaultLogLevel is the zerolog level used when none is configured.
	DefaultLogLevel = "warn"

	appDirName     = "tdam"
	configFileName = "config.yaml"
)

// Config holds the CLI configuration. Credentials are not stored here; they
// live in the system keyring.
type Config struct {
	APIBaseURL     string `yaml:"api_base_url"`
	Public         bool   `yaml:"public"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	LogLevel       string `yaml:"log_level"`
	LogFile        string `yaml:"log_file,omitempty"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:     DefaultAPIBaseURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		LogLevel:       DefaultLogLevel,
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/tdam, or ~/.config/tdam.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appDirName)
	}
	return filepath.Join(home, ".config", appDirName)
}

// ConfigPath returns the path of the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// Load reads the config at path. A missing file yields the defaults, and
// fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg, nil
}

// Save writes cfg to path with 0600 permissions, creating the directory
// with 0700 if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
