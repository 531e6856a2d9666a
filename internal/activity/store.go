package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/matthewbaird/lensgrid/internal/blob"
)

// Store is the interface for writing and reading the change log.
type Store interface {
	// Write appends entries. Entries whose event ID is already stored are
	// ignored.
	Write(ctx context.Context, entries []Entry) error

	// Query returns matching entries newest first, and the cursor of the next
	// page when there is one.
	Query(ctx context.Context, opts QueryOptions) (entries []Entry, nextCursor string, err error)

	Close() error
}

// SQLStore implements Store on the lens_activity table, next to the blobs of
// an SQL blob store. occurred_at is kept as Unix nanoseconds so ordering and
// cursors behave the same on SQLite and Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect blob.Dialect
}

// NewSQLStore wraps an open database. The caller keeps ownership of db.
func NewSQLStore(db *sql.DB, dialect blob.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Migrate creates the lens_activity table when it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	payloadType := "TEXT"
	if s.dialect == blob.DialectPostgres {
		payloadType = "JSONB"
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS lens_activity (
			event_id    TEXT PRIMARY KEY,
			event_type  TEXT NOT NULL,
			occurred_at BIGINT NOT NULL,
			blob_name   TEXT NOT NULL,
			filter_key  TEXT NOT NULL,
			summary     TEXT NOT NULL,
			category    TEXT NOT NULL,
			weight      TEXT NOT NULL,
			payload     %s
		)`, payloadType))
	if err != nil {
		return fmt.Errorf("creating lens_activity: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_lens_activity_time ON lens_activity (occurred_at DESC)`)
	if err != nil {
		return fmt.Errorf("indexing lens_activity: %w", err)
	}
	return nil
}

func (s *SQLStore) Write(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`INSERT INTO lens_activity (
		event_id, event_type, occurred_at, blob_name, filter_key, summary, category, weight, payload
	) VALUES `)
	args := make([]any, 0, len(entries)*9)
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		var payload any
		if len(e.Payload) > 0 {
			payload = string(e.Payload)
		}
		args = append(args,
			e.EventID, e.EventType, e.OccurredAt.UnixNano(), e.Blob, e.FilterKey,
			e.Summary, e.Category, e.Weight, payload,
		)
	}
	b.WriteString(" ON CONFLICT DO NOTHING")

	if _, err := s.db.ExecContext(ctx, blob.Rebind(s.dialect, b.String()), args...); err != nil {
		return fmt.Errorf("writing activity entries: %w", err)
	}
	return nil
}

func (s *SQLStore) Query(ctx context.Context, opts QueryOptions) ([]Entry, string, error) {
	var conditions []string
	var args []any

	if opts.Since != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, opts.Since.UnixNano())
	}
	if opts.Until != nil {
		conditions = append(conditions, "occurred_at <= ?")
		args = append(args, opts.Until.UnixNano())
	}
	if len(opts.EventTypes) > 0 {
		conditions = append(conditions, "event_type IN ("+placeholders(len(opts.EventTypes))+")")
		for _, t := range opts.EventTypes {
			args = append(args, t)
		}
	}
	if opts.FilterKey != "" {
		conditions = append(conditions, "filter_key = ?")
		args = append(args, opts.FilterKey)
	}
	if opts.MinWeight != "" && opts.MinWeight != WeightInfo {
		var weights []string
		for w := range weightOrder {
			if IsAtLeastWeight(w, opts.MinWeight) {
				weights = append(weights, w)
			}
		}
		conditions = append(conditions, "weight IN ("+placeholders(len(weights))+")")
		for _, w := range weights {
			args = append(args, w)
		}
	}
	if opts.Text != "" {
		conditions = append(conditions, "LOWER(summary) LIKE ?")
		args = append(args, "%"+strings.ToLower(opts.Text)+"%")
	}
	if cursor, ok := opts.cursor(); ok {
		conditions = append(conditions, "occurred_at < ?")
		args = append(args, cursor.UnixNano())
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	limit := opts.limit()
	query := fmt.Sprintf(`
		SELECT event_id, event_type, occurred_at, blob_name, filter_key, summary, category, weight, payload
		FROM lens_activity
		%s
		ORDER BY occurred_at DESC
		LIMIT ?`, where)
	args = append(args, limit+1) // one extra decides whether there is a next page

	rows, err := s.db.QueryContext(ctx, blob.Rebind(s.dialect, query), args...)
	if err != nil {
		return nil, "", fmt.Errorf("querying activity entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			nanos   int64
			payload sql.NullString
		)
		if err := rows.Scan(&e.EventID, &e.EventType, &nanos, &e.Blob, &e.FilterKey,
			&e.Summary, &e.Category, &e.Weight, &payload); err != nil {
			return nil, "", fmt.Errorf("scanning activity entry: %w", err)
		}
		e.OccurredAt = time.Unix(0, nanos).UTC()
		if payload.Valid {
			e.Payload = json.RawMessage(payload.String)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("reading activity entries: %w", err)
	}

	var next string
	if len(entries) > limit {
		entries = entries[:limit]
		next = formatCursor(entries[len(entries)-1].OccurredAt)
	}
	return entries, next, nil
}

// Close is a no-op; the blob store owns the database.
func (s *SQLStore) Close() error { return nil }

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
