// Package inventory implements the sparse three-level grid store
// (filter key -> sphere -> cylinder -> cell).
//
// Every mutation is a pure function: the input Inventory is never modified and
// the result shares all untouched sub-grids and rows with it. Only the maps on
// the path to the written cell are copied.
package inventory

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matthewbaird/lensgrid/internal/grading"
	"github.com/matthewbaird/lensgrid/internal/types"
)

// Lookup returns the cell at (key, sph, cyl). Absent cells are the erase cell
// and report ok == false.
func Lookup(inv types.Inventory, key, sph, cyl string) (types.Cell, bool) {
	cell, ok := inv[key][sph][cyl]
	return cell, ok
}

// SetCell writes cell at (key, sph, cyl) and returns the new Inventory. An erase
// cell removes the entry, pruning empty rows. Stock is forced to 0 when the
// color is the erase tag, and negative stock is clamped to 0.
func SetCell(inv types.Inventory, key, sph, cyl string, cell types.Cell) types.Inventory {
	cell = normalize(cell)

	grid := inv[key]
	row := grid[sph]

	newRow := make(types.CylinderRow, len(row)+1)
	maps.Copy(newRow, row)
	if cell.Available() {
		newRow[cyl] = cell
	} else {
		delete(newRow, cyl)
	}

	newGrid := make(types.SubGrid, len(grid)+1)
	maps.Copy(newGrid, grid)
	if len(newRow) > 0 {
		newGrid[sph] = newRow
	} else {
		delete(newGrid, sph)
	}

	out := make(types.Inventory, len(inv)+1)
	maps.Copy(out, inv)
	out[key] = newGrid
	return out
}

// Paint applies a color tag to one cell. Painting the tag the cell already has
// is a no-op and returns inv itself with changed == false. Painting the erase
// tag zeroes stock; any other tag keeps the existing stock.
func Paint(inv types.Inventory, key, sph, cyl, tag string) (out types.Inventory, changed bool) {
	prev, _ := Lookup(inv, key, sph, cyl)
	if prev.Color == tag {
		return inv, false
	}
	next := types.Cell{Stock: prev.Stock, Color: tag}
	if tag == types.EraseTag {
		next.Stock = 0
	}
	return SetCell(inv, key, sph, cyl, next), true
}

// SetStock overwrites the stock of one cell, leaving its color untouched.
// Negative stock is rejected with changed == false. Writing stock to an
// unavailable cell keeps it unavailable.
func SetStock(inv types.Inventory, key, sph, cyl string, stock int) (out types.Inventory, changed bool) {
	if stock < 0 {
		return inv, false
	}
	prev, _ := Lookup(inv, key, sph, cyl)
	if prev.Stock == stock {
		return inv, false
	}
	if !prev.Available() {
		return inv, false
	}
	return SetCell(inv, key, sph, cyl, types.Cell{Stock: stock, Color: prev.Color}), true
}

// Clone returns a deep copy of inv.
func Clone(inv types.Inventory) types.Inventory {
	out := make(types.Inventory, len(inv))
	for key, grid := range inv {
		g := make(types.SubGrid, len(grid))
		for sph, row := range grid {
			g[sph] = maps.Clone(row)
		}
		out[key] = g
	}
	return out
}

// Equal reports whether a and b hold the same available cells. Empty sub-grids
// and rows are ignored.
func Equal(a, b types.Inventory) bool {
	return count(a) == count(b) && contains(a, b)
}

func count(inv types.Inventory) int {
	n := 0
	Walk(inv, func(string, string, string, types.Cell) { n++ })
	return n
}

func contains(a, b types.Inventory) bool {
	ok := true
	Walk(a, func(key, sph, cyl string, cell types.Cell) {
		if other, found := Lookup(b, key, sph, cyl); !found || other != cell {
			ok = false
		}
	})
	return ok
}

// Walk visits every stored cell in a deterministic order: filter keys
// lexicographically, spheres from highest to lowest, cylinders from lowest to
// highest.
func Walk(inv types.Inventory, fn func(key, sph, cyl string, cell types.Cell)) {
	for _, key := range slices.Sorted(maps.Keys(inv)) {
		grid := inv[key]
		sphs := slices.SortedFunc(maps.Keys(grid), func(a, b string) int { return compareAxis(b, a) })
		for _, sph := range sphs {
			row := grid[sph]
			cyls := slices.SortedFunc(maps.Keys(row), compareAxis)
			for _, cyl := range cyls {
				fn(key, sph, cyl, row[cyl])
			}
		}
	}
}

// Normalize returns a copy of inv with every cell satisfying the store
// invariants: no unavailable cells and no negative stock.
func Normalize(inv types.Inventory) types.Inventory {
	out := make(types.Inventory, len(inv))
	for key, grid := range inv {
		g := make(types.SubGrid, len(grid))
		for sph, row := range grid {
			r := make(types.CylinderRow, len(row))
			for cyl, cell := range row {
				if cell = normalize(cell); cell.Available() {
					r[cyl] = cell
				}
			}
			if len(r) > 0 {
				g[sph] = r
			}
		}
		out[key] = g
	}
	return out
}

func normalize(c types.Cell) types.Cell {
	if c.Stock < 0 || !c.Available() {
		c.Stock = 0
	}
	return c
}

// compareAxis orders axis strings numerically, falling back to string order
// for values that do not parse.
func compareAxis(a, b string) int {
	av, aok := grading.ParseValue(a)
	bv, bok := grading.ParseValue(b)
	if aok && bok && av != bv {
		return cmp.Compare(av, bv)
	}
	return cmp.Compare(a, b)
}
