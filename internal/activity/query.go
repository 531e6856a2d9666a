// Package activity keeps a queryable change log of the inventory: every
// domain event the engine publishes becomes one classified entry.
package activity

import (
	"encoding/json"
	"time"
)

// Entry is one logged change.
type Entry struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Blob       string          `json:"blob"`
	FilterKey  string          `json:"filter_key,omitempty"`
	Summary    string          `json:"summary"`
	Category   string          `json:"category"`
	Weight     string          `json:"weight"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Limits on a single page of results.
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// QueryOptions controls filtering and pagination of the change log.
type QueryOptions struct {
	Since      *time.Time
	Until      *time.Time
	EventTypes []string // empty matches every type
	FilterKey  string   // exact filter key of cell events
	MinWeight  string   // default: "info"
	Text       string   // case-insensitive substring of the summary
	Limit      int      // default: 100, max: 500
	Cursor     string   // occurred_at of the last entry of the previous page
}

// DefaultQueryOptions returns the options of an unfiltered first page.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{MinWeight: WeightInfo, Limit: DefaultLimit}
}

func (o QueryOptions) limit() int {
	if o.Limit <= 0 || o.Limit > MaxLimit {
		return DefaultLimit
	}
	return o.Limit
}

func (o QueryOptions) cursor() (time.Time, bool) {
	if o.Cursor == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, o.Cursor)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatCursor(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
