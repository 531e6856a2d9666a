// Package persist loads the engine state from a blob store at startup and
// saves each changed blob after every mutation.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/matthewbaird/lensgrid/internal/blob"
	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/engine"
	"github.com/matthewbaird/lensgrid/internal/event"
	"github.com/matthewbaird/lensgrid/internal/inventory"
	"github.com/matthewbaird/lensgrid/internal/types"
)

// Loader reads the three persisted blobs.
type Loader struct {
	store  blob.Store
	schema *schema
}

// NewLoader compiles the blob schema.
func NewLoader(store blob.Store) (*Loader, error) {
	s, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Loader{store: store, schema: s}, nil
}

// Load returns the persisted state. Each blob falls back to its built-in
// default on its own when it is absent or corrupt; corruption is logged and
// never returned. Only store failures are returned.
func (l *Loader) Load(ctx context.Context) (engine.State, error) {
	st := engine.DefaultState()

	var inv types.Inventory
	ok, err := l.load(ctx, event.BlobInventory, &inv)
	if err != nil {
		return engine.State{}, err
	}
	if ok {
		st.Inventory = inventory.Normalize(inv)
	}

	var colors []types.ColorInfo
	ok, err = l.load(ctx, event.BlobColors, &colors)
	if err != nil {
		return engine.State{}, err
	}
	if ok {
		st.Colors = catalog.EnsureErase(catalog.FillDefaults(colors))
	}

	var options types.OptionSets
	ok, err = l.load(ctx, event.BlobOptions, &options)
	if err != nil {
		return engine.State{}, err
	}
	if ok {
		st.Options = catalog.FillOptions(options)
	}

	return st, nil
}

func (l *Loader) load(ctx context.Context, name event.Blob, dst any) (bool, error) {
	data, err := l.store.Load(ctx, string(name))
	if errors.Is(err, blob.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", name, err)
	}
	if err := l.schema.decode(name, data, dst); err != nil {
		log.Printf("persist: %s blob is corrupt, using defaults: %v", name, err)
		return false, nil
	}
	return true, nil
}
