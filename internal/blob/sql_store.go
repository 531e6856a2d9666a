package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// Dialect selects the SQL flavor of an SQLStore.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLStore implements Store on a single lens_blobs table, one row per blob.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open database.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenSQL opens dsn with the driver matching dialect and creates the table.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	driver := "sqlite"
	if dialect == DialectPostgres {
		driver = "pgx"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// A single connection serializes writers and keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", dialect, err)
	}

	s := NewSQLStore(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the lens_blobs table when it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	dataType, timeType := "BLOB", "TIMESTAMP"
	if s.dialect == DialectPostgres {
		dataType, timeType = "BYTEA", "TIMESTAMPTZ"
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS lens_blobs (
			name       TEXT PRIMARY KEY,
			data       %s NOT NULL,
			updated_at %s NOT NULL
		)`, dataType, timeType))
	if err != nil {
		return fmt.Errorf("creating lens_blobs: %w", err)
	}
	return nil
}

// DB returns the underlying database, shared with the activity log.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Dialect returns the SQL flavor of the store.
func (s *SQLStore) Dialect() Dialect { return s.dialect }

func (s *SQLStore) bind(query string) string { return Rebind(s.dialect, query) }

// Rebind rewrites "?" placeholders to the form dialect expects.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Load(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT data FROM lens_blobs WHERE name = ?`), name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading blob %s: %w", name, err)
	}
	return data, nil
}

func (s *SQLStore) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx, s.bind(`
		INSERT INTO lens_blobs (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`),
		name, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving blob %s: %w", name, err)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
