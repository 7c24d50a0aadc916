// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults = %v", err)
	}
	if cfg.Server.Addr != ":8642" {
		t.Errorf("Addr = %q, want :8642", cfg.Server.Addr)
	}
	if !cfg.Storage.Enabled {
		t.Error("Storage.Enabled = false by default, want true")
	}
}

func TestLoadFileDefaultsOnly(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile(\"\") error = %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log config = %+v, want info/json", cfg.Log)
	}
	if cfg.Engine.ProcessInterval != 5*time.Second {
		t.Errorf("ProcessInterval = %v, want 5s", cfg.Engine.ProcessInterval)
	}
}

func TestLoadFileYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":9000"
log:
  level: debug
engine:
  process_interval: 2s
  max_queue: 500
storage:
  enabled: false
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Engine.ProcessInterval != 2*time.Second {
		t.Errorf("ProcessInterval = %v, want 2s", cfg.Engine.ProcessInterval)
	}
	if cfg.Engine.MaxQueue != 500 {
		t.Errorf("MaxQueue = %d, want 500", cfg.Engine.MaxQueue)
	}
	if cfg.Storage.Enabled {
		t.Error("Storage.Enabled = true, want overridden false")
	}
	// Untouched keys keep their defaults.
	if cfg.Server.RateLimit != 100 {
		t.Errorf("RateLimit = %d, want default 100", cfg.Server.RateLimit)
	}
}

func TestLoadFileEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ADAPT_SERVER__ADDR", ":7777")
	t.Setenv("ADAPT_LOG__LEVEL", "warn")
	t.Setenv("ADAPT_ENGINE__PROCESS_INTERVAL", "30s")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("Addr = %q, want env value :7777", cfg.Server.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Engine.ProcessInterval != 30*time.Second {
		t.Errorf("ProcessInterval = %v, want 30s", cfg.Engine.ProcessInterval)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad log level", "log:\n  level: shouting\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"zero rate limit", "server:\n  rate_limit: 0\n"},
		{"zero queue", "engine:\n  max_queue: 0\n"},
		{"storage without path", "storage:\n  enabled: true\n  path: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadFileMissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit file")
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ADAPT_SERVER__ADDR", "server.addr"},
		{"ADAPT_ENGINE__PROCESS_INTERVAL", "engine.process_interval"},
		{"ADAPT_LOG__LEVEL", "log.level"},
		{"ADAPT_CONFIG_PATH", ""},
	}

	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
