package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if cfg.Trainer.Mode != nil || cfg.Serve.Port != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[trainer]
mode = 3
duration = 60
delay = 0
sound = true

[serve]
port = "2323"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Trainer.Mode == nil || *cfg.Trainer.Mode != 3 {
		t.Fatalf("unexpected mode: %v", cfg.Trainer.Mode)
	}
	if cfg.Trainer.Duration == nil || *cfg.Trainer.Duration != 60 {
		t.Fatalf("unexpected duration: %v", cfg.Trainer.Duration)
	}
	if cfg.Trainer.Delay == nil || *cfg.Trainer.Delay != 0 {
		t.Fatalf("explicit zero delay must be kept")
	}
	if cfg.Trainer.Size != nil {
		t.Fatalf("unset size must stay nil")
	}
	if cfg.Trainer.Sound == nil || !*cfg.Trainer.Sound {
		t.Fatalf("expected sound enabled")
	}
	if cfg.Serve.Port == nil || *cfg.Serve.Port != "2323" {
		t.Fatalf("unexpected port: %v", cfg.Serve.Port)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[trainer]\nspeed = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "trainer.speed") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "aimtui", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "aimtui", "aimtui.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "aimtui", "aimtui.log") {
		t.Fatalf("unexpected log path: %s", got)
	}
}
