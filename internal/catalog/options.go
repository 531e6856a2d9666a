package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matthewbaird/lensgrid/internal/filterkey"
	"github.com/matthewbaird/lensgrid/internal/types"
)

var (
	ErrUnknownAttribute = errors.New("unknown lens attribute")
	ErrInvalidOption    = errors.New("invalid option value")
)

// DefaultOptions returns the built-in attribute option sets.
func DefaultOptions() types.OptionSets {
	return types.OptionSets{
		types.AttrFoco:             {"Monofocal", "Bifocal", "Progresivo"},
		types.AttrMaterial:         {"Mineral", "Orgánico", "Policarbonato"},
		types.AttrColor:            {"Sin color", "Marrón", "Gris", "Verde"},
		types.AttrFotocromatico:    {"Sin Fotocromático", "Transitions", "Fotocromático Genérico"},
		types.AttrTratamiento:      {"Sin Tratamiento", "Antirreflejos", "Antirrayas", "Filtro Azul"},
		types.AttrDiametro:         {"65", "70", "75"},
		types.AttrAdicion:          {"0", "1.00", "1.25", "1.50", "1.75", "2.00", "2.25", "2.50", "2.75", "3.00"},
		types.AttrIndiceRefraccion: {"1.523", "1.60", "1.67", "1.74"},
	}
}

// DefaultFilters is the selection a new session starts with.
func DefaultFilters() types.LensFilters {
	return types.LensFilters{
		Foco:             "Monofocal",
		Material:         "Mineral",
		Color:            "Sin color",
		Fotocromatico:    "Sin Fotocromático",
		Tratamiento:      "Antirreflejos",
		Diametro:         "65",
		Adicion:          "0",
		IndiceRefraccion: "1.523",
	}
}

// AddOption appends value to the attribute's option list and returns the new
// option sets. Existing values are kept in place, so adding a duplicate
// returns an equal copy. Values may not contain the filter-key separator.
func AddOption(opts types.OptionSets, attr types.Attribute, value string) (types.OptionSets, error) {
	if !types.IsAttribute(string(attr)) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	value = strings.TrimSpace(value)
	if value == "" || strings.Contains(value, filterkey.Separator) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOption, value)
	}

	out := make(types.OptionSets, len(opts))
	for a, values := range opts {
		out[a] = values
	}
	if slices.Contains(opts[attr], value) {
		return out, nil
	}
	values := make([]string, 0, len(opts[attr])+1)
	values = append(values, opts[attr]...)
	out[attr] = append(values, value)
	return out, nil
}

// FillOptions adds the default list for any attribute missing from opts.
func FillOptions(opts types.OptionSets) types.OptionSets {
	defaults := DefaultOptions()
	out := make(types.OptionSets, len(types.Attributes))
	for _, a := range types.Attributes {
		if values, ok := opts[a]; ok {
			out[a] = slices.Clone(values)
		} else {
			out[a] = defaults[a]
		}
	}
	return out
}
