package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// BackendType identifies the blob backend.
type BackendType string

const (
	BackendFile   BackendType = "file"
	BackendSQLite BackendType = "sqlite"
	BackendS3     BackendType = "s3"
)

// Backend defines the interface for blob backends. Keys are lowercased
// usernames; values are opaque user blobs.
type Backend interface {
	// Type returns the backend type
	Type() BackendType

	// Put replaces the blob stored under key
	Put(key string, blob []byte) error

	// Get returns the blob stored under key, with found=false for a
	// missing key
	Get(key string) (blob []byte, found bool, err error)

	// Delete removes the blob under key; missing keys are not an error
	Delete(key string) error

	// List enumerates all stored keys
	List() ([]string, error)

	// Close releases backend resources
	Close() error

	// Description returns a human-readable description
	Description() string
}

// Config holds the blob backend configuration
type Config struct {
	Backend BackendType `yaml:"backend"`

	// File-specific
	DataDir string `yaml:"dataDir,omitempty"` // blobs live in <dataDir>/users

	// SQLite-specific
	SQLitePath string `yaml:"sqlitePath,omitempty"` // e.g. "./photos.db" or ":memory:"

	// S3-specific
	S3Bucket string `yaml:"s3Bucket,omitempty"`
	S3Prefix string `yaml:"s3Prefix,omitempty"` // key prefix, defaults to "users"
}

// ConfigFromEnv creates a Config from environment variables.
// PHOTOS_STORE: "file", "sqlite" or "s3" (defaults to "file")
// For file: PHOTOS_DATA_DIR (defaults to "data")
// For SQLite: PHOTOS_SQLITE_PATH
// For S3: BUCKET_NAME plus the usual AWS credentials variables
func ConfigFromEnv() Config {
	backend := BackendType(os.Getenv("PHOTOS_STORE"))
	if backend == "" {
		backend = BackendFile
	}

	cfg := Config{Backend: backend}

	switch backend {
	case BackendSQLite:
		cfg.SQLitePath = os.Getenv("PHOTOS_SQLITE_PATH")
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = "photos.db"
		}
	case BackendS3:
		cfg.S3Bucket = os.Getenv("BUCKET_NAME")
		cfg.S3Prefix = os.Getenv("PHOTOS_S3_PREFIX")
	default:
		cfg.DataDir = os.Getenv("PHOTOS_DATA_DIR")
		if cfg.DataDir == "" {
			cfg.DataDir = "data"
		}
	}

	return cfg
}

// NewBackend creates a Backend from Config
func NewBackend(cfg Config) (Backend, error) {
	switch cfg.Backend {
	case BackendFile, "":
		dir := cfg.DataDir
		if dir == "" {
			dir = "data"
		}
		return NewFileBackend(filepath.Join(dir, "users"))
	case BackendSQLite:
		return NewSQLiteBackend(cfg.SQLitePath)
	case BackendS3:
		return NewS3Backend(cfg.S3Bucket, cfg.S3Prefix)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}

// SupportedBackends returns a list of all supported backend types
func SupportedBackends() []BackendType {
	return []BackendType{
		BackendFile,
		BackendSQLite,
		BackendS3,
	}
}
