package csvcodec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/inventory"
	"github.com/matthewbaird/lensgrid/internal/types"
)

const key = "Monofocal|Mineral|Sin color|Sin Fotocromático|Antirreflejos|65|0|1.523"

const importHeader = "Foco,Material,Color,Fotocromatico,Tratamiento,Diametro,Adicion,Indice Refraccion,Esfera,Cilindro,Stock"

func TestExport(t *testing.T) {
	inv := types.Inventory{}
	inv = inventory.SetCell(inv, key, "2.00", "0.50", types.Cell{Stock: 20, Color: "#fde047"})
	inv = inventory.SetCell(inv, key, "-1.00", "0.00", types.Cell{Stock: 3, Color: "#unknown"})

	var buf bytes.Buffer
	n, err := Export(&buf, inv, catalog.DefaultColors())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,SKU,Foco,Material,Color,Fotocromatico,Tratamiento,Diametro,Adicion,Indice Refraccion,Esfera,Cilindro,Stock,Precio", lines[0])
	assert.Equal(t,
		"1,Monofocal|Mineral|Sin color|Sin Fotocromático|Antirreflejos|65|0|1.523-2.00-0.50,Monofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,2.00,0.50,20,50.00",
		lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",-1.00,0.00,3,0.00"), "unknown tag exports price 0")
}

func TestExport_QuotesSpecialFields(t *testing.T) {
	quoted := "Mono, focal|Mi\"neral|c|f|t|65|0|1.5"
	inv := inventory.SetCell(types.Inventory{}, quoted, "1.00", "0.00", types.Cell{Stock: 1, Color: "#86efac"})

	var buf bytes.Buffer
	_, err := Export(&buf, inv, catalog.DefaultColors())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `,"Mono, focal",`)
	assert.Contains(t, buf.String(), `,"Mi""neral",`)
}

func TestExport_LeavesPaddedFieldsBare(t *testing.T) {
	padded := "Monofocal| Mineral|Sin color|Sin Fotocromático|Antirreflejos|65|0|1.523"
	inv := inventory.SetCell(types.Inventory{}, padded, "1.00", "0.00", types.Cell{Stock: 1, Color: "#86efac"})

	var buf bytes.Buffer
	_, err := Export(&buf, inv, catalog.DefaultColors())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), ",Monofocal, Mineral,Sin color,")
	assert.NotContains(t, buf.String(), `" Mineral"`)
}

func TestExport_Empty(t *testing.T) {
	var buf bytes.Buffer
	_, err := Export(&buf, types.Inventory{}, catalog.DefaultColors())
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Zero(t, buf.Len(), "no file is produced")
}

func TestImport_DefaultsToLowStockColor(t *testing.T) {
	csv := importHeader + "\n" +
		"Monofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,+2.00,0.50,20\n"

	inv, res, err := Import(strings.NewReader(csv), types.Inventory{}, catalog.DefaultColors())
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Processed: 1}, res)

	cell, ok := inventory.Lookup(inv, key, "+2.00", "0.50")
	require.True(t, ok)
	assert.Equal(t, types.Cell{Stock: 20, Color: "#fde047"}, cell)
}

func TestImport_PreservesExistingColor(t *testing.T) {
	base := inventory.SetCell(types.Inventory{}, key, "1.00", "0.00", types.Cell{Stock: 2, Color: "#86efac"})
	csv := importHeader + "\nMonofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,1.00,0.00,0\n"

	inv, res, err := Import(strings.NewReader(csv), base, catalog.DefaultColors())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)

	cell, _ := inventory.Lookup(inv, key, "1.00", "0.00")
	assert.Equal(t, types.Cell{Stock: 0, Color: "#86efac"}, cell)

	old, _ := inventory.Lookup(base, key, "1.00", "0.00")
	assert.Equal(t, 2, old.Stock, "import works on a copy")
}

func TestImport_ZeroStockNewCellStaysUnavailable(t *testing.T) {
	csv := importHeader + "\nMonofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,1.00,0.00,0\n"
	inv, res, err := Import(strings.NewReader(csv), types.Inventory{}, catalog.DefaultColors())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	_, ok := inventory.Lookup(inv, key, "1.00", "0.00")
	assert.False(t, ok)
	assert.Contains(t, inv, key, "sub-grid is created for new keys")
}

func TestImport_NoLowStockEntryLeavesUnavailable(t *testing.T) {
	colors := []types.ColorInfo{{Name: "Eliminar", Value: ""}, {Name: "Otro", Value: "#000000", Price: decimal.NewFromInt(1)}}
	csv := importHeader + "\nMonofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,1.00,0.00,9\n"

	inv, _, err := Import(strings.NewReader(csv), types.Inventory{}, colors)
	require.NoError(t, err)
	_, ok := inventory.Lookup(inv, key, "1.00", "0.00")
	assert.False(t, ok)
}

func TestImport_SkipsBadRows(t *testing.T) {
	csv := strings.Join([]string{
		`"Foco","Material","Color","Fotocromatico","Tratamiento","Diametro","Adicion","Indice Refraccion","Esfera","Cilindro","Stock"`,
		"Monofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,1.00,0.00,abc",
		"Monofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,,0.00,5",
		"Monofocal,Mineral,Sin color",
		"   ",
		"Monofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,1.00,0.25,-4",
		"Monofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,1.00,0.50,7\r",
	}, "\n")

	inv, res, err := Import(strings.NewReader(csv), types.Inventory{}, catalog.DefaultColors())
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Processed: 1, Skipped: 4}, res)
	cell, ok := inventory.Lookup(inv, key, "1.00", "0.50")
	require.True(t, ok)
	assert.Equal(t, 7, cell.Stock)
}

func TestImport_ColumnsInAnyOrder(t *testing.T) {
	csv := "Stock,Cilindro,Esfera,Indice Refraccion,Adicion,Diametro,Tratamiento,Fotocromatico,Color,Material,Foco\n" +
		"4,0.25,-3.00,1.523,0,65,Antirreflejos,Sin Fotocromático,Sin color,Mineral,Monofocal\n"
	inv, res, err := Import(strings.NewReader(csv), types.Inventory{}, catalog.DefaultColors())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	cell, ok := inventory.Lookup(inv, key, "-3.00", "0.25")
	require.True(t, ok)
	assert.Equal(t, 4, cell.Stock)
}

func TestImport_ValidationErrors(t *testing.T) {
	_, _, err := Import(strings.NewReader(importHeader+"\n\n"), types.Inventory{}, nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	noStock := strings.TrimSuffix(importHeader, ",Stock")
	_, _, err = Import(strings.NewReader(noStock+"\na,b,c,d,e,f,g,h,1.00,0.00\n"), types.Inventory{}, nil)
	require.ErrorIs(t, err, ErrMissingColumn)
	var mc *MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, "Stock", mc.Column)
}

func TestExportImportRoundTrip(t *testing.T) {
	colors := catalog.DefaultColors()
	orig := types.Inventory{}
	orig = inventory.SetCell(orig, key, "2.00", "0.50", types.Cell{Stock: 20, Color: "#86efac"})
	orig = inventory.SetCell(orig, key, "-4.25", "1.75", types.Cell{Stock: 0, Color: "#fdba74"})
	other := "Progresivo|Orgánico|Gris|Transitions|Filtro Azul|70|2.00|1.67"
	orig = inventory.SetCell(orig, other, "0.00", "6.50", types.Cell{Stock: 5, Color: "#fde047"})

	var buf bytes.Buffer
	_, err := Export(&buf, orig, colors)
	require.NoError(t, err)

	got, res, err := Import(&buf, types.Inventory{}, colors)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Processed)

	inventory.Walk(orig, func(k, sph, cyl string, want types.Cell) {
		cell, _ := inventory.Lookup(got, k, sph, cyl)
		assert.Equal(t, want.Stock, cell.Stock, "%s %s %s", k, sph, cyl)
		assert.Equal(t, want.Stock > 0, cell.Available(), "%s %s %s", k, sph, cyl)
	})
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"20", 20, true},
		{" 7 ", 7, true},
		{"20abc", 20, true},
		{"1.9", 1, true},
		{"-3", -3, true},
		{"+4", 4, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLeadingInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseThenApply(t *testing.T) {
	csv := importHeader + "\n" +
		"Monofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,1.00,0.00,6\n" +
		"Monofocal,Mineral,Sin color,Sin Fotocromático,Antirreflejos,65,0,1.523,1.00,0.00,x\n"

	rows, res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Processed: 1, Skipped: 1}, res)
	assert.Equal(t, []Row{{Key: key, Sph: "1.00", Cyl: "0.00", Stock: 6}}, rows)

	// Rows land on whatever store they are applied to.
	base := inventory.SetCell(types.Inventory{}, key, "2.00", "0.00", types.Cell{Stock: 1, Color: "#86efac"})
	inv := Apply(base, rows, catalog.DefaultColors())
	cell, ok := inventory.Lookup(inv, key, "1.00", "0.00")
	require.True(t, ok)
	assert.Equal(t, types.Cell{Stock: 6, Color: "#fde047"}, cell)
	_, ok = inventory.Lookup(inv, key, "2.00", "0.00")
	assert.True(t, ok)
	_, ok = inventory.Lookup(base, key, "1.00", "0.00")
	assert.False(t, ok, "apply works on a copy")
}
