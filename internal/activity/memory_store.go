package activity

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
)

// MemoryStore implements Store using an in-memory slice. The log is lost on
// restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	seen    map[string]struct{}
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (s *MemoryStore) Write(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if _, dup := s.seen[e.EventID]; dup {
			continue
		}
		s.seen[e.EventID] = struct{}{}
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, opts QueryOptions) ([]Entry, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cursor, hasCursor := opts.cursor()
	text := strings.ToLower(opts.Text)

	var matched []Entry
	for _, e := range s.entries {
		if opts.Since != nil && e.OccurredAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && e.OccurredAt.After(*opts.Until) {
			continue
		}
		if len(opts.EventTypes) > 0 && !slices.Contains(opts.EventTypes, e.EventType) {
			continue
		}
		if opts.FilterKey != "" && e.FilterKey != opts.FilterKey {
			continue
		}
		if opts.MinWeight != "" && !IsAtLeastWeight(e.Weight, opts.MinWeight) {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(e.Summary), text) {
			continue
		}
		if hasCursor && !e.OccurredAt.Before(cursor) {
			continue
		}
		matched = append(matched, e)
	}

	// Newest first.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	limit := opts.limit()
	var next string
	if len(matched) > limit {
		matched = matched[:limit]
		next = formatCursor(matched[len(matched)-1].OccurredAt)
	}
	return matched, next, nil
}

func (s *MemoryStore) Close() error { return nil }
