package csvcodec

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/inventory"
	"github.com/matthewbaird/lensgrid/internal/types"
)

var (
	ErrEmptyFile     = errors.New("el archivo CSV está vacío o no tiene datos")
	ErrMissingColumn = errors.New("falta la columna requerida en el CSV")
)

// MissingColumnError names the required column absent from the header.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumn, e.Column)
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// RequiredColumns must all be present in an imported header, in any order.
func RequiredColumns() []string {
	cols := make([]string, 0, 11)
	cols = append(cols, AttributeColumns[:]...)
	return append(cols, ColSphere, ColCyl, ColStock)
}

// ImportResult reports how many data rows were applied and skipped.
type ImportResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// Row is one accepted data row of an import file.
type Row struct {
	Key   string
	Sph   string
	Cyl   string
	Stock int
}

// Import applies a CSV file to a deep copy of inv and returns the new store.
// It is Parse followed by Apply.
func Import(r io.Reader, inv types.Inventory, colors []types.ColorInfo) (types.Inventory, ImportResult, error) {
	rows, res, err := Parse(r)
	if err != nil {
		return nil, res, err
	}
	return Apply(inv, rows, colors), res, nil
}

// Parse reads an import file into rows without touching any store.
//
// Parsing is deliberately naive: lines are split on commas with no quote
// handling, so fields exported with quotes do not round-trip. Header fields
// have their quotes stripped. Rows that are too short, lack a sphere or
// cylinder, or carry a stock that is not a non-negative integer are skipped.
// The result counts every accepted row as processed.
func Parse(r io.Reader) ([]Row, ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ImportResult{}, fmt.Errorf("reading csv: %w", err)
	}

	lines := nonBlankLines(string(data))
	if len(lines) < 2 {
		return nil, ImportResult{}, ErrEmptyFile
	}

	header := strings.Split(strings.TrimSpace(lines[0]), ",")
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.ReplaceAll(h, `"`, ""))
	}
	idx := make(map[string]int, 11)
	for _, col := range RequiredColumns() {
		i := indexOf(header, col)
		if i < 0 {
			return nil, ImportResult{}, &MissingColumnError{Column: col}
		}
		idx[col] = i
	}

	var (
		rows []Row
		res  ImportResult
	)
	for _, line := range lines[1:] {
		values := strings.Split(strings.TrimSpace(line), ",")
		if len(values) < len(header) {
			res.Skipped++
			continue
		}

		var attrs [8]string
		for i, col := range AttributeColumns {
			attrs[i] = values[idx[col]]
		}
		row := Row{
			Key: strings.Join(attrs[:], "|"),
			Sph: values[idx[ColSphere]],
			Cyl: values[idx[ColCyl]],
		}
		stock, ok := parseLeadingInt(values[idx[ColStock]])
		if row.Sph == "" || row.Cyl == "" || !ok || stock < 0 {
			res.Skipped++
			continue
		}
		row.Stock = stock
		rows = append(rows, row)
	}
	res.Processed = len(rows)
	return rows, res, nil
}

// Apply writes rows into a deep copy of inv, in order, and returns the copy.
//
// A cell keeps its existing color; a new cell with stock gets the "Stock Bajo"
// color when the catalog has one and is otherwise left unavailable.
func Apply(inv types.Inventory, rows []Row, colors []types.ColorInfo) types.Inventory {
	defaultTag := types.EraseTag
	if low, ok := catalog.ByName(colors, catalog.LowStockName); ok {
		defaultTag = low.Value
	}

	out := inventory.Clone(inv)
	for _, r := range rows {
		grid := out[r.Key]
		if grid == nil {
			grid = types.SubGrid{}
			out[r.Key] = grid
		}
		row := grid[r.Sph]
		if row == nil {
			row = types.CylinderRow{}
			grid[r.Sph] = row
		}

		color := row[r.Cyl].Color
		if color == types.EraseTag && r.Stock > 0 {
			color = defaultTag
		}
		if color == types.EraseTag {
			delete(row, r.Cyl)
			if len(row) == 0 {
				delete(grid, r.Sph)
			}
		} else {
			row[r.Cyl] = types.Cell{Stock: r.Stock, Color: color}
		}
	}
	return out
}

func nonBlankLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}

// parseLeadingInt reads an optionally signed run of leading digits, ignoring
// surrounding whitespace and anything after the digits ("20abc" -> 20), the way
// spreadsheet exports are commonly read.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
