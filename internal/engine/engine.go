// Package engine composes the inventory store, the color catalog and the
// attribute option sets behind one concurrency-safe write surface.
//
// Every mutation is computed by the pure functions in inventory, catalog and
// csvcodec, swapped in wholesale, and then announced through an
// event.Publisher. Persistence is one such subscriber; the engine never talks
// to storage itself.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/matthewbaird/lensgrid/internal/analytics"
	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/csvcodec"
	"github.com/matthewbaird/lensgrid/internal/event"
	"github.com/matthewbaird/lensgrid/internal/grading"
	"github.com/matthewbaird/lensgrid/internal/inventory"
	"github.com/matthewbaird/lensgrid/internal/types"
)

var (
	ErrOffGrid         = errors.New("coordinate is not on the grading axes")
	ErrNegativeStock   = errors.New("stock must be a non-negative integer")
	ErrUnavailableCell = errors.New("cell is not available")
	ErrUnknownBlob     = errors.New("unknown blob")
)

// State is the full persisted state of the engine.
type State struct {
	Inventory types.Inventory
	Colors    []types.ColorInfo
	Options   types.OptionSets
}

// DefaultState is what a first run starts with.
func DefaultState() State {
	return State{
		Inventory: types.Inventory{},
		Colors:    catalog.DefaultColors(),
		Options:   catalog.DefaultOptions(),
	}
}

// Engine owns the three persisted entities. Readers get snapshots; the values
// behind them are never mutated after being swapped in.
type Engine struct {
	mu      sync.RWMutex
	inv     types.Inventory
	colors  []types.ColorInfo
	options types.OptionSets
	pub     event.Publisher
}

// New returns an Engine seeded with st. A nil publisher discards events.
func New(st State, pub event.Publisher) *Engine {
	if pub == nil {
		pub = event.Discard
	}
	if st.Inventory == nil {
		st.Inventory = types.Inventory{}
	}
	return &Engine{
		inv:     st.Inventory,
		colors:  st.Colors,
		options: st.Options,
		pub:     pub,
	}
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (e *Engine) Inventory() types.Inventory {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.inv
}

func (e *Engine) Colors() []types.ColorInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.colors
}

func (e *Engine) Options() types.OptionSets {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.options
}

// SubGrid returns the sub-grid stored under key, or nil when none exists.
func (e *Engine) SubGrid(key string) types.SubGrid {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.inv[key]
}

// Cell returns the cell at one coordinate.
func (e *Engine) Cell(key, sph, cyl string) (types.Cell, bool) {
	return inventory.Lookup(e.Inventory(), key, sph, cyl)
}

// Stats aggregates the whole inventory.
func (e *Engine) Stats() types.Stats {
	e.mu.RLock()
	inv, colors := e.inv, e.colors
	e.mu.RUnlock()
	return analytics.Aggregate(inv, colors)
}

// Export writes the available cells as CSV and returns the row count.
func (e *Engine) Export(w io.Writer) (int, error) {
	e.mu.RLock()
	inv, colors := e.inv, e.colors
	e.mu.RUnlock()
	return csvcodec.Export(w, inv, colors)
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return State{Inventory: e.inv, Colors: e.colors, Options: e.options}
}

// MarshalBlob serializes one persisted entity in its stored JSON form.
func (e *Engine) MarshalBlob(name event.Blob) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var v any
	switch name {
	case event.BlobInventory:
		v = e.inv
	case event.BlobColors:
		v = e.colors
	case event.BlobOptions:
		v = e.options
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlob, name)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", name, err)
	}
	return data, nil
}

// ── Inventory writes ─────────────────────────────────────────────────────────

func checkCoord(sph, cyl string) error {
	if !slices.Contains(grading.Spheres(), sph) || !slices.Contains(grading.Cylinders(), cyl) {
		return fmt.Errorf("%w: %s/%s", ErrOffGrid, sph, cyl)
	}
	return nil
}

// Paint applies a cataloged color tag to one cell. It reports whether the
// store changed; repainting the same tag is a no-op.
func (e *Engine) Paint(ctx context.Context, key, sph, cyl, tag string) (bool, error) {
	if err := checkCoord(sph, cyl); err != nil {
		return false, err
	}

	e.mu.Lock()
	if _, ok := catalog.ByTag(e.colors, tag); !ok {
		e.mu.Unlock()
		return false, fmt.Errorf("%w: %q", catalog.ErrUnknownColor, tag)
	}
	next, changed := inventory.Paint(e.inv, key, sph, cyl, tag)
	if changed {
		e.inv = next
	}
	cell, _ := inventory.Lookup(next, key, sph, cyl)
	e.mu.Unlock()

	if changed {
		e.pub.Publish(ctx, event.NewCellPainted(event.CellPayload{
			FilterKey: key, Sph: sph, Cyl: cyl, Color: tag, Stock: cell.Stock,
		}))
	}
	return changed, nil
}

// SetStock overwrites the stock of an available cell and reports whether the
// store changed.
func (e *Engine) SetStock(ctx context.Context, key, sph, cyl string, stock int) (bool, error) {
	if err := checkCoord(sph, cyl); err != nil {
		return false, err
	}
	if stock < 0 {
		return false, ErrNegativeStock
	}

	e.mu.Lock()
	prev, _ := inventory.Lookup(e.inv, key, sph, cyl)
	if !prev.Available() {
		e.mu.Unlock()
		return false, fmt.Errorf("%w: %s/%s", ErrUnavailableCell, sph, cyl)
	}
	next, changed := inventory.SetStock(e.inv, key, sph, cyl, stock)
	if changed {
		e.inv = next
	}
	e.mu.Unlock()

	if changed {
		e.pub.Publish(ctx, event.NewStockSet(event.CellPayload{
			FilterKey: key, Sph: sph, Cyl: cyl, Color: prev.Color, Stock: stock,
		}))
	}
	return changed, nil
}

// Import applies a CSV file. Parsing runs outside the lock; the parsed rows
// are then applied to the store as it is at that moment, so edits made while
// the file was being read are kept. On error the store is left untouched.
func (e *Engine) Import(ctx context.Context, r io.Reader) (csvcodec.ImportResult, error) {
	rows, res, err := csvcodec.Parse(r)
	if err != nil {
		return res, err
	}

	e.mu.Lock()
	e.inv = csvcodec.Apply(e.inv, rows, e.colors)
	e.mu.Unlock()

	e.pub.Publish(ctx, event.NewInventoryImported(event.ImportPayload{
		Processed: res.Processed, Skipped: res.Skipped,
	}))
	return res, nil
}

// ── Catalog writes ───────────────────────────────────────────────────────────

// AddColor appends a catalog entry and returns it as stored.
func (e *Engine) AddColor(ctx context.Context, c types.ColorInfo) (types.ColorInfo, error) {
	e.mu.Lock()
	next, err := catalog.AddColor(e.colors, c)
	if err != nil {
		e.mu.Unlock()
		return types.ColorInfo{}, err
	}
	e.colors = next
	added := next[len(next)-1]
	e.mu.Unlock()

	e.pub.Publish(ctx, event.NewColorAdded(event.ColorPayload{
		Name: added.Name, Value: added.Value, Price: added.Price.String(),
	}))
	return added, nil
}

// SetPrice replaces the unit price of a cataloged tag.
func (e *Engine) SetPrice(ctx context.Context, tag string, price decimal.Decimal) error {
	e.mu.Lock()
	prev, ok := catalog.ByTag(e.colors, tag)
	next, err := catalog.SetPrice(e.colors, tag, price)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if ok && prev.Price.Equal(price) {
		e.mu.Unlock()
		return nil
	}
	e.colors = next
	e.mu.Unlock()

	e.pub.Publish(ctx, event.NewPriceChanged(event.ColorPayload{
		Name: prev.Name, Value: tag, Price: price.String(),
	}))
	return nil
}

// AddAttributeOption appends value to an attribute's option list and returns
// the value as stored. Adding an existing value changes nothing.
func (e *Engine) AddAttributeOption(ctx context.Context, attr types.Attribute, value string) (string, error) {
	e.mu.Lock()
	next, err := catalog.AddOption(e.options, attr, value)
	if err != nil {
		e.mu.Unlock()
		return "", err
	}
	value = strings.TrimSpace(value)
	existed := slices.Contains(e.options[attr], value)
	e.options = next
	e.mu.Unlock()

	if !existed {
		e.pub.Publish(ctx, event.NewOptionAdded(event.OptionPayload{
			Attribute: string(attr), Value: value,
		}))
	}
	return value, nil
}
