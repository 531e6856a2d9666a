// Package csvcodec maps the inventory store to and from the flat CSV format
// used for bulk edits in spreadsheets.
package csvcodec

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/filterkey"
	"github.com/matthewbaird/lensgrid/internal/inventory"
	"github.com/matthewbaird/lensgrid/internal/types"
)

// FileName is the suggested name of an exported file.
const FileName = "inventario_lentes.csv"

// Column names shared by export and import.
const (
	ColID     = "ID"
	ColSKU    = "SKU"
	ColSphere = "Esfera"
	ColCyl    = "Cilindro"
	ColStock  = "Stock"
	ColPrice  = "Precio"
)

// AttributeColumns are the CSV headers of the eight lens attributes, in
// filter-key order.
var AttributeColumns = [8]string{
	"Foco",
	"Material",
	"Color",
	"Fotocromatico",
	"Tratamiento",
	"Diametro",
	"Adicion",
	"Indice Refraccion",
}

// ErrNothingToExport is returned when no cell is available.
var ErrNothingToExport = errors.New("no hay datos de inventario para exportar")

// Header returns the export header row.
func Header() []string {
	h := make([]string, 0, 14)
	h = append(h, ColID, ColSKU)
	h = append(h, AttributeColumns[:]...)
	return append(h, ColSphere, ColCyl, ColStock, ColPrice)
}

// Export writes every available cell of inv as one CSV row. Price comes from
// the cell's catalog entry (0 when the tag is unknown) with two decimals.
// Fields containing a comma, quote or newline are quoted. Nothing is written
// when there are no available cells.
func Export(w io.Writer, inv types.Inventory, colors []types.ColorInfo) (int, error) {
	var rows [][]string
	inventory.Walk(inv, func(key, sph, cyl string, cell types.Cell) {
		if !cell.Available() {
			return
		}
		values := filterkey.Decode(key).Values()
		row := make([]string, 0, 14)
		row = append(row,
			strconv.Itoa(len(rows)+1),
			fmt.Sprintf("%s-%s-%s", key, sph, cyl),
		)
		row = append(row, values[:]...)
		row = append(row,
			sph,
			cyl,
			strconv.Itoa(cell.Stock),
			catalog.PriceOf(colors, cell.Color).StringFixed(2),
		)
		rows = append(rows, row)
	})
	if len(rows) == 0 {
		return 0, ErrNothingToExport
	}

	var sb strings.Builder
	writeRecord(&sb, Header())
	for _, row := range rows {
		writeRecord(&sb, row)
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return 0, fmt.Errorf("writing csv: %w", err)
	}
	return len(rows), nil
}

// writeRecord appends one CSV line. Only fields containing a comma, a double
// quote or a line break are quoted, with inner quotes doubled; surrounding
// spaces are left bare.
func writeRecord(sb *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		if !strings.ContainsAny(f, ",\"\r\n") {
			sb.WriteString(f)
			continue
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}
