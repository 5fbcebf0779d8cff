package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"e2ecore/internal/config"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := config.Default()
	if cfg.DirectoryTTL != def.DirectoryTTL || cfg.KDF != def.KDF || cfg.LogLevel != def.LogLevel {
		t.Fatalf("missing file must yield defaults, got %+v", cfg)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
home: /var/lib/e2ecore
directory_url: https://keys.example.com
directory_ttl: 30s
log_level: debug
kdf:
  time: 3
  memory_kb: 131072
  threads: 2
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Home != "/var/lib/e2ecore" {
		t.Fatalf("Home = %q", cfg.Home)
	}
	if cfg.DirectoryURL != "https://keys.example.com" {
		t.Fatalf("DirectoryURL = %q", cfg.DirectoryURL)
	}
	if cfg.DirectoryTTL != 30*time.Second {
		t.Fatalf("DirectoryTTL = %v", cfg.DirectoryTTL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.KDF.Time != 3 || cfg.KDF.MemoryKB != 131072 || cfg.KDF.Threads != 2 {
		t.Fatalf("KDF = %+v", cfg.KDF)
	}
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: warn\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.KDF != config.Default().KDF {
		t.Fatalf("untouched KDF must keep defaults, got %+v", cfg.KDF)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("directroy_url: oops\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("misspelled key must be rejected")
	}
}
