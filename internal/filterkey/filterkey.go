// Package filterkey derives the canonical sub-grid address from a set of lens
// attribute selections.
//
// A key is the eight selections joined with "|" in the fixed attribute order.
// Values containing "|" would collide; rejecting them is the option-set
// catalog's job, not this package's.
package filterkey

import (
	"strings"

	"github.com/matthewbaird/lensgrid/internal/types"
)

// Separator joins attribute values inside a key.
const Separator = "|"

// UnknownMaterial labels keys without a material segment.
const UnknownMaterial = "Desconocido"

// Encode joins the selections in filter-key order.
func Encode(f types.LensFilters) string {
	v := f.Values()
	return strings.Join(v[:], Separator)
}

// Decode splits a key back into its selections. Missing trailing segments are
// left empty; extra segments are dropped.
func Decode(key string) types.LensFilters {
	var v [8]string
	copy(v[:], strings.Split(key, Separator))
	return types.FiltersFromValues(v)
}

// Segments returns the raw pipe-separated parts of key.
func Segments(key string) []string {
	return strings.Split(key, Separator)
}

// Humanize renders a key for display, e.g. "Monofocal / Mineral / ...".
func Humanize(key string) string {
	return strings.ReplaceAll(key, Separator, " / ")
}

// Material returns the material segment of key, or UnknownMaterial.
func Material(key string) string {
	parts := Segments(key)
	if len(parts) < 2 || parts[1] == "" {
		return UnknownMaterial
	}
	return parts[1]
}
