// Package config loads application settings from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"photos/internal/store"

	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up when no config file is named explicitly.
const DefaultPath = "photos.yaml"

type Config struct {
	// Addr is the listen address of the HTTP surface (serve mode).
	Addr string `yaml:"addr"`

	// SeedDir is the directory scanned at stock-user first login.
	SeedDir string `yaml:"seedDir"`

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	Store store.Config `yaml:"store"`
}

func Default() Config {
	return Config{
		Addr:     "localhost:8069",
		SeedDir:  "data/stock",
		LogLevel: "info",
		Store:    store.ConfigFromEnv(),
	}
}

// Load reads the config file at path, falling back to defaults when the
// file is absent. Environment variables override file values: the
// application keys PHOTOS_ADDR, PHOTOS_SEED_DIR and PHOTOS_LOG_LEVEL,
// and the store keys PHOTOS_STORE, PHOTOS_DATA_DIR, PHOTOS_SQLITE_PATH,
// BUCKET_NAME and PHOTOS_S3_PREFIX.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PHOTOS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("PHOTOS_SEED_DIR"); v != "" {
		cfg.SeedDir = v
	}
	if v := os.Getenv("PHOTOS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PHOTOS_STORE"); v != "" {
		cfg.Store.Backend = store.BackendType(v)
	}
	if v := os.Getenv("PHOTOS_DATA_DIR"); v != "" {
		cfg.Store.DataDir = v
	}
	if v := os.Getenv("PHOTOS_SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("BUCKET_NAME"); v != "" {
		cfg.Store.S3Bucket = v
	}
	if v := os.Getenv("PHOTOS_S3_PREFIX"); v != "" {
		cfg.Store.S3Prefix = v
	}

	return cfg, nil
}
