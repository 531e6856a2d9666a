// Package event defines the change notifications the engine emits after each
// successful mutation. Consumers (persistence, logging) subscribe through the
// eventbus; the mutation code itself never touches storage.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Blob names one independently persisted entity.
type Blob string

const (
	BlobInventory Blob = "inventory"
	BlobColors    Blob = "colors"
	BlobOptions   Blob = "filter_options"
)

// Blobs lists every persisted entity.
var Blobs = []Blob{BlobInventory, BlobColors, BlobOptions}

// DomainEvent carries the canonical shape of every change notification.
type DomainEvent struct {
	ID         string
	EventType  string
	OccurredAt time.Time
	Blob       Blob
	Summary    string
	Payload    json.RawMessage
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

// PublisherFunc adapts a plain function to the Publisher interface.
type PublisherFunc func(ctx context.Context, evt DomainEvent)

func (f PublisherFunc) Publish(ctx context.Context, evt DomainEvent) { f(ctx, evt) }

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, DomainEvent) {})

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func newEvent(eventType string, blob Blob, summary string, payload any) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  eventType,
		OccurredAt: time.Now(),
		Blob:       blob,
		Summary:    summary,
		Payload:    mustJSON(payload),
	}
}

// ── Inventory events ─────────────────────────────────────────────────────────

// CellPayload carries the cell written by a paint or stock edit.
type CellPayload struct {
	FilterKey string `json:"filter_key"`
	Sph       string `json:"sph"`
	Cyl       string `json:"cyl"`
	Color     string `json:"color"`
	Stock     int    `json:"stock"`
}

func NewCellPainted(p CellPayload) DomainEvent {
	return newEvent("cell_painted", BlobInventory,
		fmt.Sprintf("painted %s/%s with %q", p.Sph, p.Cyl, p.Color), p)
}

func NewStockSet(p CellPayload) DomainEvent {
	return newEvent("stock_set", BlobInventory,
		fmt.Sprintf("stock at %s/%s set to %d", p.Sph, p.Cyl, p.Stock), p)
}

// ImportPayload carries the tally of a CSV import.
type ImportPayload struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

func NewInventoryImported(p ImportPayload) DomainEvent {
	return newEvent("inventory_imported", BlobInventory,
		fmt.Sprintf("imported %d rows (%d skipped)", p.Processed, p.Skipped), p)
}

// ── Catalog events ───────────────────────────────────────────────────────────

// ColorPayload identifies a catalog entry.
type ColorPayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Price string `json:"price"`
}

func NewColorAdded(p ColorPayload) DomainEvent {
	return newEvent("color_added", BlobColors, fmt.Sprintf("color %q added", p.Name), p)
}

func NewPriceChanged(p ColorPayload) DomainEvent {
	return newEvent("price_changed", BlobColors,
		fmt.Sprintf("price of %q set to %s", p.Value, p.Price), p)
}

// OptionPayload identifies an appended attribute option.
type OptionPayload struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

func NewOptionAdded(p OptionPayload) DomainEvent {
	return newEvent("option_added", BlobOptions,
		fmt.Sprintf("option %q added to %s", p.Value, p.Attribute), p)
}
