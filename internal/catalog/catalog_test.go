package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/lensgrid/internal/types"
)

func TestDefaultColors_EraseLocatable(t *testing.T) {
	c, ok := ByTag(DefaultColors(), types.EraseTag)
	require.True(t, ok)
	assert.Equal(t, "Eliminar", c.Name)

	low, ok := ByName(DefaultColors(), LowStockName)
	require.True(t, ok)
	assert.Equal(t, "#fde047", low.Value)
	require.NotNil(t, low.LowStockThreshold)
	assert.Equal(t, 15, *low.LowStockThreshold)
}

func TestAddColor(t *testing.T) {
	zero := 0
	colors, err := AddColor(DefaultColors(), types.ColorInfo{
		Name:              "Agotado",
		Value:             "#1e3a8a",
		Price:             decimal.NewFromFloat(12.5),
		LowStockThreshold: &zero,
	})
	require.NoError(t, err)
	require.Len(t, colors, 5)

	added := colors[4]
	assert.Equal(t, "text-white", added.TextColor)
	assert.Nil(t, added.LowStockThreshold, "non-positive thresholds are dropped")
	assert.Len(t, DefaultColors(), 4)
}

func TestAddColor_Rejects(t *testing.T) {
	base := DefaultColors()

	_, err := AddColor(base, types.ColorInfo{Name: "X", Value: ""})
	assert.ErrorIs(t, err, ErrReservedTag)

	_, err = AddColor(base, types.ColorInfo{Name: "Stock Bajo", Value: "#000000"})
	assert.ErrorIs(t, err, ErrDuplicateColor)

	_, err = AddColor(base, types.ColorInfo{Name: "Nuevo", Value: "#fde047"})
	assert.ErrorIs(t, err, ErrDuplicateColor)

	_, err = AddColor(base, types.ColorInfo{Name: "Nuevo", Value: "#000001", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = AddColor(base, types.ColorInfo{Name: " ", Value: "#000001"})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestSetPrice(t *testing.T) {
	base := DefaultColors()
	colors, err := SetPrice(base, "#86efac", decimal.NewFromFloat(120.25))
	require.NoError(t, err)
	assert.True(t, PriceOf(colors, "#86efac").Equal(decimal.NewFromFloat(120.25)))
	assert.True(t, PriceOf(base, "#86efac").Equal(decimal.NewFromInt(100)), "input untouched")

	_, err = SetPrice(base, "#nope", decimal.Zero)
	assert.ErrorIs(t, err, ErrUnknownColor)
}

func TestPriceOf_Unknown(t *testing.T) {
	assert.True(t, PriceOf(DefaultColors(), "#123456").IsZero())
}

func TestTextColorFor(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"#ffffff", "text-gray-900"},
		{"#000000", "text-white"},
		{"#fde047", "text-gray-900"},
		{"", "text-gray-900"},
		{"#abc", "text-gray-900"},
		{"#zzzzzz", "text-gray-900"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TextColorFor(tt.hex), tt.hex)
	}
}

func TestFillDefaults(t *testing.T) {
	neg := -4
	out := FillDefaults([]types.ColorInfo{{Name: "Legacy", Value: "#000000", LowStockThreshold: &neg}})
	assert.Equal(t, "text-white", out[0].TextColor)
	assert.Nil(t, out[0].LowStockThreshold)
}

func TestEnsureErase(t *testing.T) {
	legacy := []types.ColorInfo{{Name: "Rojo", Value: "#ff0000"}}
	out := EnsureErase(legacy)
	require.Len(t, out, 2)
	assert.Equal(t, types.EraseTag, out[0].Value)
	assert.Equal(t, "Rojo", out[1].Name)

	defaults := DefaultColors()
	assert.Equal(t, defaults, EnsureErase(defaults))
}

func TestAddOption(t *testing.T) {
	base := DefaultOptions()
	opts, err := AddOption(base, types.AttrDiametro, "80")
	require.NoError(t, err)
	assert.Equal(t, []string{"65", "70", "75", "80"}, opts[types.AttrDiametro])
	assert.Len(t, base[types.AttrDiametro], 3, "input untouched")

	again, err := AddOption(opts, types.AttrDiametro, "80")
	require.NoError(t, err)
	assert.Equal(t, opts[types.AttrDiametro], again[types.AttrDiametro])
}

func TestAddOption_Rejects(t *testing.T) {
	_, err := AddOption(DefaultOptions(), "peso", "x")
	assert.ErrorIs(t, err, ErrUnknownAttribute)

	_, err = AddOption(DefaultOptions(), types.AttrColor, "Azul|Rojo")
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = AddOption(DefaultOptions(), types.AttrColor, "  ")
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestFillOptions(t *testing.T) {
	out := FillOptions(types.OptionSets{types.AttrFoco: {"Ocupacional"}})
	assert.Equal(t, []string{"Ocupacional"}, out[types.AttrFoco])
	assert.Equal(t, DefaultOptions()[types.AttrMaterial], out[types.AttrMaterial])
	assert.Len(t, out, 8)
}
