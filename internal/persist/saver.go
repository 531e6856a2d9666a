package persist

import (
	"context"
	"fmt"

	"github.com/matthewbaird/lensgrid/internal/blob"
	"github.com/matthewbaird/lensgrid/internal/event"
)

// Source serializes the current form of a persisted blob.
type Source interface {
	MarshalBlob(name event.Blob) ([]byte, error)
}

// Saver writes the blob named by each domain event. It is an eventbus
// handler and always saves the latest state, so coalesced or reordered
// events still leave the store current.
type Saver struct {
	store  blob.Store
	source Source
}

func NewSaver(store blob.Store, source Source) *Saver {
	return &Saver{store: store, source: source}
}

func (s *Saver) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	return s.Save(ctx, evt.Blob)
}

// Save writes one blob.
func (s *Saver) Save(ctx context.Context, name event.Blob) error {
	data, err := s.source.MarshalBlob(name)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, string(name), data); err != nil {
		return fmt.Errorf("persisting %s: %w", name, err)
	}
	return nil
}

// SaveAll writes every blob.
func (s *Saver) SaveAll(ctx context.Context) error {
	for _, name := range event.Blobs {
		if err := s.Save(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
