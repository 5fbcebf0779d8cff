// Package config loads the CLI configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration of the command-line tools. Every field
// has a sensible default; a missing file is not an error.
type Config struct {
	// Home is the state directory holding the keyring and session files.
	Home string `yaml:"home"`

	// DirectoryURL is the base URL of the public-key directory service.
	// Empty disables directory lookups.
	DirectoryURL string `yaml:"directory_url"`

	// DirectoryTTL bounds how long resolved keys are served from cache.
	DirectoryTTL time.Duration `yaml:"directory_ttl"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	KDF KDFConfig `yaml:"kdf"`
}

// KDFConfig tunes the Argon2id cost for vault and backup sealing.
type KDFConfig struct {
	Time     uint32 `yaml:"time"`
	MemoryKB uint32 `yaml:"memory_kb"`
	Threads  uint8  `yaml:"threads"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Home:         filepath.Join(home, ".e2ecore"),
		DirectoryTTL: 5 * time.Minute,
		LogLevel:     "info",
		KDF:          KDFConfig{Time: 2, MemoryKB: 64 * 1024, Threads: 1},
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// unknown keys are rejected so typos surface instead of silently defaulting.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DirectoryTTL <= 0 {
		cfg.DirectoryTTL = 5 * time.Minute
	}
	return cfg, nil
}
