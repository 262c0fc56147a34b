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
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  addr: \":9000\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected addr :9000, got %q", cfg.Server.Addr)
	}
	if cfg.Session.Store != StoreSQLite {
		t.Errorf("expected sqlite store, got %q", cfg.Session.Store)
	}
	if cfg.Toast.TTL != 3*time.Second {
		t.Errorf("expected toast ttl 3s, got %v", cfg.Toast.TTL)
	}
	if cfg.Locale.Default != "en" {
		t.Errorf("expected default locale en, got %q", cfg.Locale.Default)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.example.test/")
	t.Setenv("NEXT_PUBLIC_MAPBOX_ACCESS_TOKEN", "pk.test")

	cfg, err := Load(writeConfig(t, "backend:\n  base_url: http://ignored/\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.example.test/" {
		t.Errorf("expected env base url, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Integrations.MapboxAccessToken != "pk.test" {
		t.Errorf("expected mapbox token from NEXT_PUBLIC_ variable, got %q", cfg.Integrations.MapboxAccessToken)
	}
}

func TestLoadRejectsRedisWithoutAddr(t *testing.T) {
	_, err := Load(writeConfig(t, "session:\n  store: redis\n"))
	if err == nil {
		t.Fatal("expected error for redis store without address")
	}
}

func TestLoadRedisRequiresSharedSecret(t *testing.T) {
	_, err := Load(writeConfig(t, "session:\n  store: redis\nredis:\n  addr: localhost:6379\n"))
	if err == nil {
		t.Fatal("expected error for redis store without session secret")
	}

	cfg, err := Load(writeConfig(t, "session:\n  store: redis\n  secret: shared\nredis:\n  addr: localhost:6379\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.Secret != "shared" || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("unexpected session config %+v / %+v", cfg.Session, cfg.Redis)
	}
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	_, err := Load(writeConfig(t, "session:\n  store: memcached\n"))
	if err == nil {
		t.Fatal("expected error for unknown session store")
	}
}
