// Package catalog holds the color/status catalog and the attribute option sets
// the grid engine reads and extends.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/matthewbaird/lensgrid/internal/types"
)

// Name of the entry import falls back to for new cells with stock.
const LowStockName = "Stock Bajo"

const (
	textDark  = "text-gray-900"
	textLight = "text-white"
)

var (
	ErrReservedTag    = errors.New("color tag is reserved for erase")
	ErrDuplicateColor = errors.New("color already exists")
	ErrNegativePrice  = errors.New("price must not be negative")
	ErrUnknownColor   = errors.New("unknown color")
	ErrEmptyName      = errors.New("color name is required")
)

// DefaultColors returns the built-in catalog.
func DefaultColors() []types.ColorInfo {
	return []types.ColorInfo{
		{Name: "Eliminar", Value: types.EraseTag, Price: decimal.Zero},
		{Name: LowStockName, Value: "#fde047", TextColor: textDark, Price: decimal.NewFromInt(50), LowStockThreshold: intPtr(15)},
		{Name: "Stock Medio", Value: "#fdba74", TextColor: textDark, Price: decimal.NewFromInt(75), LowStockThreshold: intPtr(30)},
		{Name: "Stock Alto", Value: "#86efac", TextColor: textDark, Price: decimal.NewFromInt(100)},
	}
}

func intPtr(n int) *int { return &n }

// ByTag finds the entry whose Value equals tag.
func ByTag(colors []types.ColorInfo, tag string) (types.ColorInfo, bool) {
	i := slices.IndexFunc(colors, func(c types.ColorInfo) bool { return c.Value == tag })
	if i < 0 {
		return types.ColorInfo{}, false
	}
	return colors[i], true
}

// ByName finds the entry with the given name.
func ByName(colors []types.ColorInfo, name string) (types.ColorInfo, bool) {
	i := slices.IndexFunc(colors, func(c types.ColorInfo) bool { return c.Name == name })
	if i < 0 {
		return types.ColorInfo{}, false
	}
	return colors[i], true
}

// PriceOf returns the price of tag, or zero when the tag is not cataloged.
func PriceOf(colors []types.ColorInfo, tag string) decimal.Decimal {
	if c, ok := ByTag(colors, tag); ok {
		return c.Price
	}
	return decimal.Zero
}

// AddColor appends a new entry and returns the new catalog. Thresholds that are
// not positive are dropped; the text color is derived from the hex value.
func AddColor(colors []types.ColorInfo, c types.ColorInfo) ([]types.ColorInfo, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Value = strings.TrimSpace(c.Value)
	if c.Name == "" {
		return nil, ErrEmptyName
	}
	if c.Value == types.EraseTag {
		return nil, ErrReservedTag
	}
	if c.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	for _, existing := range colors {
		if existing.Name == c.Name || existing.Value == c.Value {
			return nil, fmt.Errorf("%w: %s (%s)", ErrDuplicateColor, c.Name, c.Value)
		}
	}
	if c.LowStockThreshold != nil && *c.LowStockThreshold <= 0 {
		c.LowStockThreshold = nil
	}
	c.TextColor = TextColorFor(c.Value)

	out := make([]types.ColorInfo, 0, len(colors)+1)
	out = append(out, colors...)
	return append(out, c), nil
}

// SetPrice returns a new catalog with the price of tag replaced.
func SetPrice(colors []types.ColorInfo, tag string, price decimal.Decimal) ([]types.ColorInfo, error) {
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	i := slices.IndexFunc(colors, func(c types.ColorInfo) bool { return c.Value == tag })
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, tag)
	}
	out := slices.Clone(colors)
	out[i].Price = price
	return out, nil
}

// TextColorFor picks a readable text class for a "#rrggbb" background using
// the W3C perceived-luminance formula.
func TextColorFor(hex string) string {
	if len(hex) < 7 || hex[0] != '#' {
		return textDark
	}
	r, errR := strconv.ParseUint(hex[1:3], 16, 8)
	g, errG := strconv.ParseUint(hex[3:5], 16, 8)
	b, errB := strconv.ParseUint(hex[5:7], 16, 8)
	if errR != nil || errG != nil || errB != nil {
		return textDark
	}
	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	if luminance > 0.5 {
		return textDark
	}
	return textLight
}

// FillDefaults repairs entries loaded from legacy data: text colors are
// recomputed when missing and non-positive thresholds are dropped.
func FillDefaults(colors []types.ColorInfo) []types.ColorInfo {
	out := slices.Clone(colors)
	for i := range out {
		if out[i].TextColor == "" && out[i].Value != types.EraseTag {
			out[i].TextColor = TextColorFor(out[i].Value)
		}
		if t := out[i].LowStockThreshold; t != nil && *t <= 0 {
			out[i].LowStockThreshold = nil
		}
	}
	return out
}

// EnsureErase returns colors with the erase entry prepended when no entry
// carries the reserved tag.
func EnsureErase(colors []types.ColorInfo) []types.ColorInfo {
	if _, ok := ByTag(colors, types.EraseTag); ok {
		return colors
	}
	out := make([]types.ColorInfo, 0, len(colors)+1)
	out = append(out, DefaultColors()[0])
	return append(out, colors...)
}
