package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
logging:
  level: debug
  console: true
engine:
  timezone: UTC
  tick: 1m
  default_mode: default
storage:
  driver: file
  path: ./settings.json
`)

	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if cfg.Engine.Timezone != "UTC" || cfg.Engine.Tick != "1m" {
		t.Fatalf("engine = %+v", cfg.Engine)
	}
	if cfg.Storage.Driver != "file" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if !cfg.Engine.IsEnabled() {
		t.Fatal("engine.enabled omitted should default to true")
	}
	if m.Get() != cfg {
		t.Fatal("Get should return the committed config")
	}
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
  "logging": {"level": "info", "console": true},
  "engine": {"enabled": false, "tick": "30s"},
  "storage": {"driver": "sqlite", "path": "./settings.db", "busy_timeout": "2s"}
}`)

	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Engine.IsEnabled() {
		t.Fatal("explicit enabled=false should stick")
	}
	if cfg.Storage.BusyTimeout != "2s" {
		t.Fatalf("busy_timeout = %q", cfg.Storage.BusyTimeout)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{"loging": {"level": "info"}}`)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadRejectsTrailingData(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{"logging":{"console":true}}{"extra":1}`)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	d, err := ParseDurationField("engine.tick", "90s")
	if err != nil || d != 90*time.Second {
		t.Fatalf("ParseDurationField = (%v, %v)", d, err)
	}
	if d, err := ParseDurationField("engine.tick", ""); err != nil || d != 0 {
		t.Fatalf("empty duration = (%v, %v), want (0, nil)", d, err)
	}
	if _, err := ParseDurationField("engine.tick", "-1s"); err == nil {
		t.Fatal("negative duration should error")
	}
	if _, err := ParseDurationField("engine.tick", "soon"); err == nil {
		t.Fatal("garbage duration should error")
	}

	d, err = ParseDurationOrDefault("engine.dedup_window", "", 70*time.Second)
	if err != nil || d != 70*time.Second {
		t.Fatalf("ParseDurationOrDefault = (%v, %v)", d, err)
	}
}
