package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected driver %q", cfg.Database.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9090"
log_level: debug
database:
  driver: postgres
  dsn: "host=localhost user=fleet dbname=fleet"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("unexpected driver %q", cfg.Database.Driver)
	}
}

func TestLoadKeepsDefaultsForUnsetFields(t *testing.T) {
	path := writeConfig(t, `log_level: warn`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected defaults to survive, got %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if _, err := Load(writeConfig(t, "listen_addr: [")); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
	if _, err := Load(writeConfig(t, "database:\n  driver: oracle")); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
	if _, err := Load(writeConfig(t, "log_level: loud")); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}
