package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Stream.BaseDelay != time.Second {
		t.Errorf("base_delay = %v, want 1s", cfg.Stream.BaseDelay)
	}
	if cfg.Stream.MaxDelay != 30*time.Second {
		t.Errorf("max_delay = %v, want 30s", cfg.Stream.MaxDelay)
	}
	if cfg.Stream.MaxRetries != 8 {
		t.Errorf("max_retries = %d, want 8", cfg.Stream.MaxRetries)
	}
	if cfg.History.Capacity != 50 {
		t.Errorf("history capacity = %d, want 50", cfg.History.Capacity)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
stream:
  url: http://hive.internal:5050/events
  max_retries: 3
announcer:
  min_interval: 10s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Stream.URL != "http://hive.internal:5050/events" {
		t.Errorf("url = %q", cfg.Stream.URL)
	}
	if cfg.Stream.MaxRetries != 3 {
		t.Errorf("max_retries = %d, want 3", cfg.Stream.MaxRetries)
	}
	// Untouched fields keep their defaults.
	if cfg.Stream.BaseDelay != time.Second {
		t.Errorf("base_delay = %v, want default 1s", cfg.Stream.BaseDelay)
	}
	if cfg.Announcer.MinInterval != 10*time.Second {
		t.Errorf("min_interval = %v, want 10s", cfg.Announcer.MinInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of a missing file did not error")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("stream: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of invalid yaml did not error")
	}
}
