package units_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-stock/internal/domain/units"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestConvert_MismaDimension(t *testing.T) {
	cases := []struct {
		name     string
		qty      string
		from, to units.Unit
		want     string
	}{
		{"kg a g", "1.5", units.Kilogram, units.Gram, "1500"},
		{"g a kg", "250", units.Gram, units.Kilogram, "0.25"},
		{"L a ml", "0.75", units.Liter, units.Milliliter, "750"},
		{"ml a L", "3000", units.Milliliter, units.Liter, "3"},
		{"misma unidad", "7", units.Piece, units.Piece, "7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := units.Convert(dec(tc.qty), tc.from, tc.to)
			assert.True(t, dec(tc.want).Equal(got), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestConvert_IdaYVuelta(t *testing.T) {
	pairs := [][2]units.Unit{
		{units.Kilogram, units.Gram},
		{units.Gram, units.Kilogram},
		{units.Liter, units.Milliliter},
		{units.Milliliter, units.Liter},
	}
	for _, q := range []string{"0.001", "0.5", "12.345", "1000"} {
		for _, p := range pairs {
			back := units.Convert(units.Convert(dec(q), p[0], p[1]), p[1], p[0])
			assert.True(t, dec(q).Equal(back), "%s %s→%s→%s = %s", q, p[0], p[1], p[0], back)
		}
	}
}

func TestConvert_DimensionDistintaDevuelveLaMismaCantidad(t *testing.T) {
	assert.True(t, dec("4").Equal(units.Convert(dec("4"), units.Kilogram, units.Piece)))
	assert.True(t, dec("4").Equal(units.Convert(dec("4"), units.Liter, units.Gram)))
	assert.True(t, dec("4").Equal(units.Convert(dec("4"), units.Unit("cup"), units.Gram)))
}

func TestCompatible(t *testing.T) {
	assert.Equal(t, []units.Unit{units.Kilogram, units.Gram}, units.Compatible(units.Gram))
	assert.Equal(t, []units.Unit{units.Liter, units.Milliliter}, units.Compatible(units.Liter))
	assert.Equal(t, []units.Unit{units.Piece}, units.Compatible(units.Piece))
	assert.Equal(t, []units.Unit{"cup"}, units.Compatible("cup"))
}

func TestParse(t *testing.T) {
	u, ok := units.Parse(" l ")
	assert.True(t, ok)
	assert.Equal(t, units.Liter, u)

	u, ok = units.Parse("KG")
	assert.True(t, ok)
	assert.Equal(t, units.Kilogram, u)

	_, ok = units.Parse("cup")
	assert.False(t, ok)
}
