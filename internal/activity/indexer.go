package activity

import (
	"context"
	"encoding/json"

	"github.com/matthewbaird/lensgrid/internal/event"
)

// Indexer consumes domain events, classifies them and writes one entry per
// event to the store. It implements eventbus.Handler.
type Indexer struct {
	store Store
}

// NewIndexer creates a new activity indexer.
func NewIndexer(store Store) *Indexer {
	return &Indexer{store: store}
}

// HandleEvent is the indexing pipeline for a single domain event.
func (idx *Indexer) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	return idx.store.Write(ctx, []Entry{EntryFor(evt)})
}

// EntryFor builds the log entry of evt.
func EntryFor(evt event.DomainEvent) Entry {
	c := Classify(evt.EventType, evt.Payload)

	var ref struct {
		FilterKey string `json:"filter_key"`
	}
	if len(evt.Payload) > 0 {
		_ = json.Unmarshal(evt.Payload, &ref)
	}

	summary := evt.Summary
	if c.Description != "" && c.Description != evt.EventType {
		summary = c.Description + ": " + summary
	}
	return Entry{
		EventID:    evt.ID,
		EventType:  evt.EventType,
		OccurredAt: evt.OccurredAt.UTC(),
		Blob:       string(evt.Blob),
		FilterKey:  ref.FilterKey,
		Summary:    summary,
		Category:   c.Category,
		Weight:     c.Weight,
		Payload:    evt.Payload,
	}
}
