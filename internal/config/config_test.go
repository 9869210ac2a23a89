package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTP.Port != defaultPort {
		t.Fatalf("expected port %d, got %d", defaultPort, cfg.HTTP.Port)
	}
	if cfg.History.Driver != "sqlite" {
		t.Fatalf("expected sqlite history, got %q", cfg.History.Driver)
	}
	if cfg.Engine.BackfillWindow != defaultBackfillWindow {
		t.Fatalf("expected backfill window %d, got %d", defaultBackfillWindow, cfg.Engine.BackfillWindow)
	}
	if cfg.Engine.StaleAfter != 30*24*time.Hour {
		t.Fatalf("unexpected stale window %s", cfg.Engine.StaleAfter)
	}
	if cfg.Cache.RedisURL != "" {
		t.Fatalf("expected no redis url, got %q", cfg.Cache.RedisURL)
	}
}

func TestLoadFileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	content := `
server:
  port: 9090
  metrics_enabled: true
logging:
  format: json
cache:
  redis_url: redis://cache:6379/0
  ttl: 2h
history:
  driver: postgres
  dsn: postgres://registry@db/registry
engine:
  backfill_window: 80
  stale_after: 240h
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("ENGINE_BACKFILL_WINDOW", "200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Fatalf("expected file port 9090, got %d", cfg.HTTP.Port)
	}
	if !cfg.HTTP.MetricsEnabled {
		t.Fatal("expected metrics enabled from file")
	}
	if cfg.Logging.Format != "text" {
		t.Fatalf("expected env to override format, got %q", cfg.Logging.Format)
	}
	if cfg.Cache.TTL != 2*time.Hour {
		t.Fatalf("expected cache ttl 2h, got %s", cfg.Cache.TTL)
	}
	if cfg.History.Driver != "postgres" || cfg.History.DSN != "postgres://registry@db/registry" {
		t.Fatalf("unexpected history config %+v", cfg.History)
	}
	if cfg.Engine.BackfillWindow != 200 {
		t.Fatalf("expected env backfill window 200, got %d", cfg.Engine.BackfillWindow)
	}
	if cfg.Engine.StaleAfter != 240*time.Hour {
		t.Fatalf("expected stale window 240h, got %s", cfg.Engine.StaleAfter)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"SERVER_PORT":         "70000",
		"SERVER_READ_TIMEOUT": "soon",
		"HISTORY_DRIVER":      "mysql",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTP.Host != defaultHost {
		t.Fatalf("expected default host, got %q", cfg.HTTP.Host)
	}
}
