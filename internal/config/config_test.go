package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Storage.Driver != StorageFile {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", cfg.Location())
	}
}

func TestLoadOverlaysFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte(`
server:
  port: "9090"
storage:
  driver: redis
redis:
  addr: localhost:6379
  ttl: 5m
auth:
  jwtSecret: from-file
achievements:
  timezone: Europe/Berlin
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Storage.Driver != StorageRedis || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("env override not applied, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != "24h" {
		t.Fatalf("default kept for unset key, got %q", cfg.Auth.TokenTTL)
	}
	if got := TTLDuration(cfg.Redis.TTL, time.Minute); got != 5*time.Minute {
		t.Fatalf("ttl: got %v", got)
	}
	if cfg.Location().String() != "Europe/Berlin" {
		t.Fatalf("timezone: got %v", cfg.Location())
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("empty: got %v", got)
	}
	if got := TTLDuration("soon", time.Second); got != time.Second {
		t.Fatalf("invalid: got %v", got)
	}
}
