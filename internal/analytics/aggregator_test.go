package analytics

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/inventory"
	"github.com/matthewbaird/lensgrid/internal/types"
)

const (
	mineralKey = "Monofocal|Mineral|Sin color|Sin Fotocromático|Antirreflejos|65|0|1.523"
	organicKey = "Bifocal|Orgánico|Gris|Transitions|Antirrayas|70|1.00|1.60"
	polyKey    = "Progresivo|Policarbonato|Verde|Transitions|Antirrayas|75|2.00|1.74"
)

func put(inv types.Inventory, key, sph, cyl string, stock int, color string) types.Inventory {
	return inventory.SetCell(inv, key, sph, cyl, types.Cell{Stock: stock, Color: color})
}

func TestAggregate_LowStockAlert(t *testing.T) {
	inv := types.Inventory{}
	inv = put(inv, mineralKey, "+1.00", "0.00", 5, "#fde047")  // threshold 15
	inv = put(inv, mineralKey, "-1.00", "0.00", 50, "#86efac") // no threshold

	stats := Aggregate(inv, catalog.DefaultColors())

	if len(stats.LowStockItems) != 1 {
		t.Fatalf("got %d low-stock items, want 1", len(stats.LowStockItems))
	}
	item := stats.LowStockItems[0]
	if item.Sph != "+1.00" || item.Stock != 5 || item.Threshold != 15 {
		t.Errorf("unexpected alert %+v", item)
	}
	want := "Monofocal / Mineral / Sin color / Sin Fotocromático / Antirreflejos / 65 / 0 / 1.523"
	if item.Filters != want {
		t.Errorf("filters = %q, want %q", item.Filters, want)
	}
}

func TestAggregate_Totals(t *testing.T) {
	inv := types.Inventory{}
	inv = put(inv, mineralKey, "1.00", "0.00", 10, "#fde047") // 10 * 50
	inv = put(inv, mineralKey, "2.00", "0.00", 4, "#86efac")  // 4 * 100
	inv = put(inv, organicKey, "0.00", "0.25", 2, "#fdba74")  // 2 * 75
	inv = put(inv, organicKey, "0.00", "0.50", 0, "#fdba74")  // ignored: no stock
	inv = put(inv, organicKey, "0.00", "0.75", 7, "#ghost")   // unknown color

	stats := Aggregate(inv, catalog.DefaultColors())

	if stats.UniqueLenses != 4 {
		t.Errorf("unique lenses = %d, want 4", stats.UniqueLenses)
	}
	if stats.TotalStock != 23 {
		t.Errorf("total stock = %d, want 23", stats.TotalStock)
	}
	if !stats.TotalValue.Equal(decimal.NewFromInt(1050)) {
		t.Errorf("total value = %s, want 1050", stats.TotalValue)
	}
}

func TestAggregate_MaterialDistribution(t *testing.T) {
	inv := types.Inventory{}
	inv = put(inv, mineralKey, "1.00", "0.00", 3, "#86efac")
	inv = put(inv, organicKey, "1.00", "0.00", 9, "#86efac")
	inv = put(inv, organicKey, "2.00", "0.00", 1, "#ghost") // not counted per material
	inv = put(inv, polyKey, "1.00", "0.00", 0, "#86efac")  // material seen, zero stock
	inv["solo"] = types.SubGrid{}

	stats := Aggregate(inv, catalog.DefaultColors())

	want := []types.MaterialBucket{
		{Name: "Orgánico", Value: 9},
		{Name: "Mineral", Value: 3},
		{Name: "Desconocido", Value: 0},
		{Name: "Policarbonato", Value: 0},
	}
	if len(stats.MaterialDistribution) != len(want) {
		t.Fatalf("got %d buckets, want %d: %+v", len(stats.MaterialDistribution), len(want), stats.MaterialDistribution)
	}
	for i, b := range want {
		if stats.MaterialDistribution[i] != b {
			t.Errorf("bucket %d = %+v, want %+v", i, stats.MaterialDistribution[i], b)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	stats := Aggregate(types.Inventory{}, catalog.DefaultColors())
	if stats.UniqueLenses != 0 || stats.TotalStock != 0 || !stats.TotalValue.IsZero() {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	if stats.LowStockItems == nil {
		t.Error("low-stock list should be empty, not nil")
	}
}
