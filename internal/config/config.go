package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "wayopenfan"
	configFile = "config.yaml"
)

// Config holds user-tunable settings for the fan controller tooling.
// Intervals are stored as whole seconds to keep the YAML hand-editable.
type Config struct {
	// LogLevel enables logging when set ("debug", "info", "warn",
	// "error"). Empty means silent.
	LogLevel string `yaml:"log_level"`

	// ServicePrefix filters advertised instance names during discovery.
	ServicePrefix string `yaml:"service_prefix"`

	// PollIntervalSeconds is how often fan status is refreshed.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// ScanIntervalSeconds is the pause between discovery browse cycles.
	ScanIntervalSeconds int `yaml:"scan_interval_seconds"`

	// ScanTimeoutSeconds bounds each discovery browse cycle.
	ScanTimeoutSeconds int `yaml:"scan_timeout_seconds"`

	// DefaultSpeed is the duty cycle used when powering a fan on with no
	// remembered speed.
	DefaultSpeed int `yaml:"default_speed"`

	// Presets are the quick-select duty cycles offered by the UIs.
	Presets []int `yaml:"presets"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ServicePrefix:       "uOpenFan",
		PollIntervalSeconds: 2,
		ScanIntervalSeconds: 5,
		ScanTimeoutSeconds:  5,
		DefaultSpeed:        50,
		Presets:             []int{0, 25, 50, 75, 100},
	}
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// ScanInterval returns the browse-cycle interval as a duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.ScanIntervalSeconds) * time.Second
}

// ScanTimeout returns the browse-cycle bound as a duration.
func (c *Config) ScanTimeout() time.Duration {
	return time.Duration(c.ScanTimeoutSeconds) * time.Second
}

// GetConfigDir returns the platform-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/wayopenfan or $HOME/.config/wayopenfan
//   - macOS: $HOME/.config/wayopenfan
//   - Windows: %LOCALAPPDATA%\wayopenfan
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			return filepath.Join(userProfile, "AppData", "Local", appName), nil
		}
		return filepath.Join(localAppData, appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads the configuration from the platform config path, returning
// defaults when no file exists.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from path. A missing file yields the
// defaults; unknown fields are rejected so typos do not silently vanish.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to the platform config path, creating
// the directory as needed.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
