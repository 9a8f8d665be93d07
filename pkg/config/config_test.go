package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.WriteTimeout != 0 {
		t.Errorf("Server.WriteTimeout = %v, want 0", cfg.Server.WriteTimeout)
	}
	if cfg.SSE.HeartbeatInterval != 25*time.Second {
		t.Errorf("SSE.HeartbeatInterval = %v, want 25s", cfg.SSE.HeartbeatInterval)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Burst != 400 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_ParsesSections(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 8181
log:
  level: debug
  format: json
sse:
  heartbeat_interval: 5s
rate_limit:
  enabled: false
  rps: 10
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.Server.Addr(); got != "127.0.0.1:8181" {
		t.Errorf("Addr() = %q", got)
	}
	if cfg.SSE.HeartbeatInterval != 5*time.Second {
		t.Errorf("HeartbeatInterval = %v", cfg.SSE.HeartbeatInterval)
	}
	if cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = true, want false")
	}
	if cfg.RateLimit.Burst != 400 {
		t.Errorf("RateLimit.Burst = %d, want default 400", cfg.RateLimit.Burst)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("REGREEN_SERVER_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalize_NegativeHeartbeat(t *testing.T) {
	c := Config{SSE: SSEConfig{HeartbeatInterval: -time.Second}}
	normalize(&c)
	if c.SSE.HeartbeatInterval != 0 {
		t.Errorf("HeartbeatInterval = %v, want 0", c.SSE.HeartbeatInterval)
	}
	if c.RateLimit.Burst != 200 {
		t.Errorf("Burst = %d, want 200", c.RateLimit.Burst)
	}
}
