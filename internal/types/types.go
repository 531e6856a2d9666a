// Package types provides the Go structs shared by the inventory grid packages.
// These are also the serialized shapes of the persisted blobs, so the JSON tags
// must stay compatible with previously saved data.
package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// EraseTag is the reserved color tag meaning "not available".
const EraseTag = ""

// Cell is the stock and availability state at one (sphere, cylinder) coordinate.
// A Cell with Color == EraseTag always has Stock == 0.
type Cell struct {
	Stock int    `json:"stock"`
	Color string `json:"color"`
}

// Available reports whether the lens at this cell is offered.
func (c Cell) Available() bool { return c.Color != EraseTag }

// CylinderRow maps cylinder value -> Cell.
type CylinderRow map[string]Cell

// SubGrid maps sphere value -> cylinder value -> Cell. A missing entry is the
// erase cell; the store never pre-populates empty cells.
type SubGrid map[string]CylinderRow

// Inventory maps filter key -> SubGrid.
type Inventory map[string]SubGrid

// ColorInfo is one entry of the color/status catalog.
type ColorInfo struct {
	Name              string          `json:"name"`
	Value             string          `json:"value"`
	TextColor         string          `json:"textColor,omitempty"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold *int            `json:"lowStockThreshold,omitempty"`
}

// MarshalJSON writes the price as a bare JSON number, the form saved catalogs
// have always used.
func (c ColorInfo) MarshalJSON() ([]byte, error) {
	type plain ColorInfo
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain(c), json.Number(c.Price.String())})
}

// Attribute names one of the eight lens attributes, in filter-key order.
type Attribute string

const (
	AttrFoco             Attribute = "foco"
	AttrMaterial         Attribute = "material"
	AttrColor            Attribute = "color"
	AttrFotocromatico    Attribute = "fotocromatico"
	AttrTratamiento      Attribute = "tratamiento"
	AttrDiametro         Attribute = "diametro"
	AttrAdicion          Attribute = "adicion"
	AttrIndiceRefraccion Attribute = "indiceRefraccion"
)

// Attributes lists the lens attributes in the fixed filter-key order.
var Attributes = [8]Attribute{
	AttrFoco,
	AttrMaterial,
	AttrColor,
	AttrFotocromatico,
	AttrTratamiento,
	AttrDiametro,
	AttrAdicion,
	AttrIndiceRefraccion,
}

// IsAttribute reports whether name is one of the eight lens attributes.
func IsAttribute(name string) bool {
	for _, a := range Attributes {
		if string(a) == name {
			return true
		}
	}
	return false
}

// LensFilters is one selection per attribute; it addresses one SubGrid.
type LensFilters struct {
	Foco             string `json:"foco"`
	Material         string `json:"material"`
	Color            string `json:"color"`
	Fotocromatico    string `json:"fotocromatico"`
	Tratamiento      string `json:"tratamiento"`
	Diametro         string `json:"diametro"`
	Adicion          string `json:"adicion"`
	IndiceRefraccion string `json:"indiceRefraccion"`
}

// Values returns the selections in filter-key order.
func (f LensFilters) Values() [8]string {
	return [8]string{
		f.Foco,
		f.Material,
		f.Color,
		f.Fotocromatico,
		f.Tratamiento,
		f.Diametro,
		f.Adicion,
		f.IndiceRefraccion,
	}
}

// Get returns the selection for one attribute.
func (f LensFilters) Get(a Attribute) string {
	for i, attr := range Attributes {
		if attr == a {
			return f.Values()[i]
		}
	}
	return ""
}

// With returns a copy of f with attribute a set to value. Unknown attributes
// leave f unchanged.
func (f LensFilters) With(a Attribute, value string) LensFilters {
	switch a {
	case AttrFoco:
		f.Foco = value
	case AttrMaterial:
		f.Material = value
	case AttrColor:
		f.Color = value
	case AttrFotocromatico:
		f.Fotocromatico = value
	case AttrTratamiento:
		f.Tratamiento = value
	case AttrDiametro:
		f.Diametro = value
	case AttrAdicion:
		f.Adicion = value
	case AttrIndiceRefraccion:
		f.IndiceRefraccion = value
	}
	return f
}

// FiltersFromValues builds LensFilters from values in filter-key order.
func FiltersFromValues(v [8]string) LensFilters {
	return LensFilters{
		Foco:             v[0],
		Material:         v[1],
		Color:            v[2],
		Fotocromatico:    v[3],
		Tratamiento:      v[4],
		Diametro:         v[5],
		Adicion:          v[6],
		IndiceRefraccion: v[7],
	}
}

// OptionSets maps attribute -> ordered allowed values. Values are only ever
// appended so historic filter keys stay valid.
type OptionSets map[Attribute][]string

// LowStockItem is one low-stock alert.
type LowStockItem struct {
	Filters   string `json:"filters"` // filter key with pipes replaced by " / "
	Sph       string `json:"sph"`
	Cyl       string `json:"cyl"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// MaterialBucket is one bar of the material distribution.
type MaterialBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Stats is the analytics summary of the whole inventory.
type Stats struct {
	TotalValue           decimal.Decimal  `json:"totalValue"`
	TotalStock           int              `json:"totalStock"`
	UniqueLenses         int              `json:"uniqueLenses"`
	LowStockItems        []LowStockItem   `json:"lowStockItems"`
	MaterialDistribution []MaterialBucket `json:"materialDistribution"`
}
