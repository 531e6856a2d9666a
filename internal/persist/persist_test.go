package persist

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/lensgrid/internal/blob"
	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/engine"
	"github.com/matthewbaird/lensgrid/internal/event"
	"github.com/matthewbaird/lensgrid/internal/eventbus"
	"github.com/matthewbaird/lensgrid/internal/inventory"
	"github.com/matthewbaird/lensgrid/internal/types"
)

const key = "Monofocal|Mineral|Sin color|Sin Fotocromático|Antirreflejos|65|0|1.523"

func load(t *testing.T, store blob.Store) engine.State {
	t.Helper()
	l, err := NewLoader(store)
	require.NoError(t, err)
	st, err := l.Load(context.Background())
	require.NoError(t, err)
	return st
}

func TestLoad_EmptyStoreUsesDefaults(t *testing.T) {
	st := load(t, blob.NewMemoryStore())
	assert.Equal(t, engine.DefaultState(), st)
}

func TestLoad_CorruptBlobsFallBackIndependently(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "inventory", []byte(`{not json`)))
	require.NoError(t, store.Save(ctx, "colors", []byte(`[{"name":"Rojo","value":"#ff0000","price":-3}]`)))
	require.NoError(t, store.Save(ctx, "filter_options", []byte(`{"foco":["Monofocal","Ocupacional"]}`)))

	st := load(t, store)
	assert.Empty(t, st.Inventory)
	assert.Equal(t, catalog.DefaultColors(), st.Colors, "negative price fails validation")
	assert.Equal(t, []string{"Monofocal", "Ocupacional"}, st.Options[types.AttrFoco])
	assert.Equal(t, catalog.DefaultOptions()[types.AttrMaterial], st.Options[types.AttrMaterial], "missing attributes are filled")
}

func TestLoad_LegacyColorWithoutPrice(t *testing.T) {
	store := blob.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "colors",
		[]byte(`[{"name":"Eliminar","value":""},{"name":"Rojo","value":"#ff0000","lowStockThreshold":0}]`)))

	st := load(t, store)
	require.Len(t, st.Colors, 2)
	rojo := st.Colors[1]
	assert.True(t, rojo.Price.IsZero())
	assert.Nil(t, rojo.LowStockThreshold)
	assert.Equal(t, "text-white", rojo.TextColor)
}

func TestLoad_ColorsWithoutEraseEntry(t *testing.T) {
	store := blob.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "colors", []byte(`[{"name":"Rojo","value":"#ff0000","price":null}]`)))

	st := load(t, store)
	_, ok := catalog.ByTag(st.Colors, types.EraseTag)
	assert.True(t, ok)
}

func TestLoad_NormalizesInventory(t *testing.T) {
	store := blob.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "inventory", []byte(`{
		"`+key+`": {
			"1.00": {"0.00": {"stock": 4, "color": "#fde047"}, "0.25": {"stock": 9, "color": ""}},
			"2.00": {"0.00": {"stock": -2, "color": "#86efac"}},
			"3.00": {"0.00": {"stock": 1}}
		}
	}`)))

	st := load(t, store)
	cell, ok := inventory.Lookup(st.Inventory, key, "1.00", "0.00")
	require.True(t, ok)
	assert.Equal(t, 4, cell.Stock)

	_, ok = inventory.Lookup(st.Inventory, key, "1.00", "0.25")
	assert.False(t, ok, "erased cells are dropped")

	cell, _ = inventory.Lookup(st.Inventory, key, "2.00", "0.00")
	assert.Equal(t, 0, cell.Stock, "negative stock is clamped")

	_, ok = inventory.Lookup(st.Inventory, key, "3.00", "0.00")
	assert.False(t, ok, "a cell without color is unavailable")
}

func TestSaverRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemoryStore()

	bus := eventbus.New(8)
	eng := engine.New(engine.DefaultState(), bus)
	bus.Subscribe("persist", NewSaver(store, eng))
	bus.Start(ctx)

	_, err := eng.Paint(ctx, key, "1.00", "0.50", "#fdba74")
	require.NoError(t, err)
	_, err = eng.SetStock(ctx, key, "1.00", "0.50", 8)
	require.NoError(t, err)
	_, err = eng.AddColor(ctx, types.ColorInfo{Name: "Rojo", Value: "#ff0000", Price: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	_, err = eng.AddAttributeOption(ctx, types.AttrDiametro, "80")
	require.NoError(t, err)
	bus.Stop()

	st := load(t, store)
	assert.True(t, inventory.Equal(eng.Inventory(), st.Inventory))
	assert.Equal(t, eng.Options(), st.Options)
	require.Len(t, st.Colors, 5)
	assert.True(t, st.Colors[4].Price.Equal(decimal.RequireFromString("12.5")))
}

func TestSaveAll(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemoryStore()
	eng := engine.New(engine.DefaultState(), nil)

	require.NoError(t, NewSaver(store, eng).SaveAll(ctx))
	for _, name := range event.Blobs {
		_, err := store.Load(ctx, string(name))
		assert.NoError(t, err, name)
	}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "inventory", []byte(`{"k":{"1.00":{"0.00":{"stock":"many","color":"#fde047"}}}}`)))
	require.NoError(t, store.Save(ctx, "colors", []byte(`[{"name":"Eliminar","value":"","price":0}]`)))

	l, err := NewLoader(store)
	require.NoError(t, err)
	reports, err := l.Check(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, event.BlobInventory, reports[0].Blob)
	assert.Equal(t, StatusInvalid, reports[0].Status)
	assert.Error(t, reports[0].Err)
	assert.Equal(t, StatusOK, reports[1].Status)
	assert.Equal(t, StatusMissing, reports[2].Status)
	assert.NoError(t, reports[2].Err)
}
