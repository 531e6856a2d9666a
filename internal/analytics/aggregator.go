// Package analytics reduces the whole inventory into the summary dashboard
// figures: valuation, stock totals, low-stock alerts and stock per material.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/matthewbaird/lensgrid/internal/filterkey"
	"github.com/matthewbaird/lensgrid/internal/inventory"
	"github.com/matthewbaird/lensgrid/internal/types"
)

// Aggregate produces Stats in a single pass over inv, independent of any
// current filter selection.
//
// Only cells with stock > 0 and a color count. Cells whose color is missing
// from the catalog still add to the stock and unique-lens totals but not to
// valuation, material distribution or alerts.
func Aggregate(inv types.Inventory, colors []types.ColorInfo) types.Stats {
	byTag := make(map[string]types.ColorInfo, len(colors))
	for _, c := range colors {
		byTag[c.Value] = c
	}

	stats := types.Stats{
		TotalValue:    decimal.Zero,
		LowStockItems: []types.LowStockItem{},
	}
	materials := make(map[string]int)

	// Every material with a sub-grid shows up, even at zero.
	for key := range inv {
		if m := filterkey.Material(key); materials[m] == 0 {
			materials[m] = 0
		}
	}

	inventory.Walk(inv, func(key, sph, cyl string, cell types.Cell) {
		if cell.Stock <= 0 || !cell.Available() {
			return
		}
		stats.UniqueLenses++
		stats.TotalStock += cell.Stock

		info, ok := byTag[cell.Color]
		if !ok {
			return
		}
		stats.TotalValue = stats.TotalValue.Add(info.Price.Mul(decimal.NewFromInt(int64(cell.Stock))))
		materials[filterkey.Material(key)] += cell.Stock

		if info.LowStockThreshold != nil && cell.Stock < *info.LowStockThreshold {
			stats.LowStockItems = append(stats.LowStockItems, types.LowStockItem{
				Filters:   filterkey.Humanize(key),
				Sph:       sph,
				Cyl:       cyl,
				Stock:     cell.Stock,
				Threshold: *info.LowStockThreshold,
			})
		}
	})

	stats.MaterialDistribution = distribution(materials)
	return stats
}

// distribution sorts material buckets by stock descending, then by name.
func distribution(materials map[string]int) []types.MaterialBucket {
	out := make([]types.MaterialBucket, 0, len(materials))
	for name, value := range materials {
		out = append(out, types.MaterialBucket{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}
