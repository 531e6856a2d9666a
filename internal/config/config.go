// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/matthewbaird/lensgrid/internal/blob"
)

// Config is the full runtime configuration of the lensgrid binaries.
type Config struct {
	Port               int
	BlobBackend        blob.Backend
	DatabaseURL        string
	BadgerDir          string
	GCSBucket          string
	GCSPrefix          string
	EventBuffer        int
	SessionIdleTimeout time.Duration
	SessionMaxAge      time.Duration
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		Port:               8080,
		BlobBackend:        blob.BackendSQLite,
		DatabaseURL:        "file:lensgrid.db",
		BadgerDir:          "./data/badger",
		GCSPrefix:          "lensgrid/",
		EventBuffer:        256,
		SessionIdleTimeout: 30 * time.Minute,
		SessionMaxAge:      24 * time.Hour,
	}
}

// LoadDotEnv loads variables from a .env file in the working directory
// unless ENV=production. Variables already set in the environment win.
func LoadDotEnv() {
	if os.Getenv("ENV") == "production" {
		return
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: reading .env: %v", err)
	}
}

// FromEnv builds a Config from the environment on top of Default.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s: want a positive integer, got %q", key, v)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("%s: want a positive duration, got %q", key, v)
		}
		*dst = d
		return nil
	}

	var backend string
	str("BLOB_BACKEND", &backend)
	if backend != "" {
		cfg.BlobBackend = blob.Backend(backend)
	}
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("BADGER_DIR", &cfg.BadgerDir)
	str("GCS_BUCKET", &cfg.GCSBucket)
	str("GCS_PREFIX", &cfg.GCSPrefix)

	for _, err := range []error{
		num("PORT", &cfg.Port),
		num("EVENT_BUFFER", &cfg.EventBuffer),
		dur("SESSION_IDLE_TIMEOUT", &cfg.SessionIdleTimeout),
		dur("SESSION_MAX_AGE", &cfg.SessionMaxAge),
	} {
		if err != nil {
			return Config{}, err
		}
	}

	switch cfg.BlobBackend {
	case blob.BackendMemory, blob.BackendSQLite, blob.BackendPostgres, blob.BackendBadger, blob.BackendGCS:
	default:
		return Config{}, fmt.Errorf("BLOB_BACKEND: unknown backend %q", cfg.BlobBackend)
	}
	return cfg, nil
}

// BlobOptions returns the blob store settings.
func (c Config) BlobOptions() blob.Options {
	return blob.Options{
		Backend:     c.BlobBackend,
		DatabaseURL: c.DatabaseURL,
		BadgerDir:   c.BadgerDir,
		GCSBucket:   c.GCSBucket,
		GCSPrefix:   c.GCSPrefix,
	}
}
