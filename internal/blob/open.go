package blob

import (
	"context"
	"fmt"
)

// Backend names a Store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendBadger   Backend = "badger"
	BackendGCS      Backend = "gcs"
)

// Options selects and configures a backend.
type Options struct {
	Backend     Backend
	DatabaseURL string
	BadgerDir   string
	GCSBucket   string
	GCSPrefix   string
}

// Open returns the Store configured by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite, "":
		dsn := opts.DatabaseURL
		if dsn == "" {
			dsn = "file:lensgrid.db"
		}
		return OpenSQL(ctx, DialectSQLite, dsn)
	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires DATABASE_URL")
		}
		return OpenSQL(ctx, DialectPostgres, opts.DatabaseURL)
	case BackendBadger:
		return OpenBadger(opts.BadgerDir)
	case BackendGCS:
		return OpenGCS(ctx, opts.GCSBucket, opts.GCSPrefix)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", opts.Backend)
	}
}
