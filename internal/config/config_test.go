package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.ServicePrefix != "uOpenFan" {
		t.Errorf("ServicePrefix = %q, want uOpenFan", cfg.ServicePrefix)
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Errorf("PollInterval() = %v, want 2s", cfg.PollInterval())
	}
	if cfg.ScanTimeout() != 5*time.Second {
		t.Errorf("ScanTimeout() = %v, want 5s", cfg.ScanTimeout())
	}
	if cfg.DefaultSpeed != 50 {
		t.Errorf("DefaultSpeed = %d, want 50", cfg.DefaultSpeed)
	}
	if len(cfg.Presets) != 5 || cfg.Presets[0] != 0 || cfg.Presets[4] != 100 {
		t.Errorf("Presets = %v, want [0 25 50 75 100]", cfg.Presets)
	}
}

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v, want nil", err)
	}
	if cfg.ServicePrefix != Default().ServicePrefix {
		t.Error("LoadFrom() missing file did not return defaults")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.ServicePrefix = "myFan"
	cfg.PollIntervalSeconds = 7
	cfg.Presets = []int{10, 90}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if loaded.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", loaded.LogLevel)
	}
	if loaded.ServicePrefix != "myFan" {
		t.Errorf("ServicePrefix = %q, want myFan", loaded.ServicePrefix)
	}
	if loaded.PollInterval() != 7*time.Second {
		t.Errorf("PollInterval() = %v, want 7s", loaded.PollInterval())
	}
	if len(loaded.Presets) != 2 || loaded.Presets[0] != 10 || loaded.Presets[1] != 90 {
		t.Errorf("Presets = %v, want [10 90]", loaded.Presets)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.ServicePrefix != "uOpenFan" {
		t.Errorf("ServicePrefix = %q, want default uOpenFan", cfg.ServicePrefix)
	}
}

func TestLoadFrom_UnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pol_interval_seconds: 3\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() accepted a misspelled field")
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("presets: [1, 2\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() accepted malformed YAML")
	}
}
