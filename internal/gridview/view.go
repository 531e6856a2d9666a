// Package gridview computes the visible, ordered sphere rows and cylinder
// columns of one sub-grid. It never modifies the store.
package gridview

import (
	"math"
	"sort"
	"strings"

	"github.com/matthewbaird/lensgrid/internal/grading"
	"github.com/matthewbaird/lensgrid/internal/types"
)

// SortKey selects what sphere rows are ordered by.
type SortKey string

const (
	SortSphere SortKey = "sphere"
	SortStock  SortKey = "stock"
)

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortConfig is the current sort directive. Column is a cylinder value and is
// only meaningful for SortStock.
type SortConfig struct {
	Key       SortKey   `json:"key"`
	Column    string    `json:"column,omitempty"`
	Direction Direction `json:"direction"`
}

// DefaultSort is the directive a new grid starts with.
func DefaultSort() SortConfig {
	return SortConfig{Key: SortSphere, Direction: Desc}
}

// Toggle returns the directive after the user picks key/column. Picking the
// same key and column flips the direction; anything else resets to the key's
// default direction (ascending for sphere, descending for stock).
func (c SortConfig) Toggle(key SortKey, column string) SortConfig {
	if c.Key == key && c.Column == column {
		if c.Direction == Asc {
			c.Direction = Desc
		} else {
			c.Direction = Asc
		}
		return c
	}
	dir := Asc
	if key == SortStock {
		dir = Desc
	}
	return SortConfig{Key: key, Column: column, Direction: dir}
}

// View is the render order of one sub-grid.
type View struct {
	Spheres   []string `json:"spheres"`
	Cylinders []string `json:"cylinders"`
}

// Compute filters the axes by query and orders the sphere rows by sc.
func Compute(spheres, cylinders []string, grid types.SubGrid, query string, sc SortConfig) View {
	sph, cyl := Search(spheres, cylinders, query)
	return View{
		Spheres:   Sort(sph, grid, sc),
		Cylinders: cyl,
	}
}

// Search restricts the axes by a free-text query of the form
// "<sphere prefix> [<cylinder prefix>]". Matching is a case-insensitive
// prefix match; without a second token every cylinder stays visible. Tokens
// past the second are ignored.
func Search(spheres, cylinders []string, query string) ([]string, []string) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return clone(spheres), clone(cylinders)
	}
	tokens := strings.Fields(q)

	outSph := filterPrefix(spheres, tokens[0])
	outCyl := clone(cylinders)
	if len(tokens) > 1 {
		outCyl = filterPrefix(cylinders, tokens[1])
	}
	return outSph, outCyl
}

func filterPrefix(values []string, prefix string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), prefix) {
			out = append(out, v)
		}
	}
	return out
}

// Sort returns the sphere rows ordered by sc. For SortStock, rows without a
// cell in the chosen column rank below every stocked row, so they come last
// when descending and first when ascending; ties fall back to descending
// sphere value. A stock directive without a column keeps the input order.
func Sort(spheres []string, grid types.SubGrid, sc SortConfig) []string {
	out := clone(spheres)
	sign := 1.0
	if sc.Direction == Desc {
		sign = -1
	}

	switch {
	case sc.Key == SortSphere:
		sort.SliceStable(out, func(i, j int) bool {
			return sign*(value(out[i])-value(out[j])) < 0
		})
	case sc.Key == SortStock && sc.Column != "":
		sort.SliceStable(out, func(i, j int) bool {
			a, b := stockAt(grid, out[i], sc.Column), stockAt(grid, out[j], sc.Column)
			if a != b {
				if sign > 0 {
					return a < b
				}
				return a > b
			}
			return value(out[i]) > value(out[j])
		})
	}
	return out
}

func stockAt(grid types.SubGrid, sph, cyl string) float64 {
	cell, ok := grid[sph][cyl]
	if !ok || !cell.Available() {
		return math.Inf(-1)
	}
	return float64(cell.Stock)
}

func value(s string) float64 {
	v, _ := grading.ParseValue(s)
	return v
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
