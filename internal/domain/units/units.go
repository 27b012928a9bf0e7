// Package units convierte cantidades entre unidades de la misma dimensión física
// (masa, volumen, conteo). Las recetas pueden declararse en una unidad distinta a la
// unidad canónica del insumo; todo cálculo de stock se hace en la unidad canónica.
package units

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Unit unidad de medida de un insumo o de una línea de receta.
type Unit string

const (
	Kilogram   Unit = "kg"
	Gram       Unit = "g"
	Liter      Unit = "L"
	Milliliter Unit = "ml"
	Piece      Unit = "un"
)

// Dimension magnitud física a la que pertenece una unidad.
type Dimension string

const (
	Mass   Dimension = "mass"
	Volume Dimension = "volume"
	Count  Dimension = "count"
)

type definition struct {
	label     string
	dimension Dimension
	factor    decimal.Decimal // factor hacia la unidad base de la dimensión (g, ml, un)
}

var catalogue = map[Unit]definition{
	Kilogram:   {label: "Kilogram", dimension: Mass, factor: decimal.NewFromInt(1000)},
	Gram:       {label: "Gram", dimension: Mass, factor: decimal.NewFromInt(1)},
	Liter:      {label: "Liter", dimension: Volume, factor: decimal.NewFromInt(1000)},
	Milliliter: {label: "Milliliter", dimension: Volume, factor: decimal.NewFromInt(1)},
	Piece:      {label: "Unit", dimension: Count, factor: decimal.NewFromInt(1)},
}

// ordered mantiene un orden estable para listados (selectores de UI).
var ordered = []Unit{Kilogram, Gram, Liter, Milliliter, Piece}

// All devuelve todas las unidades conocidas.
func All() []Unit {
	out := make([]Unit, len(ordered))
	copy(out, ordered)
	return out
}

// Parse normaliza un texto libre a una unidad conocida ("KG" → kg, "l" → L).
func Parse(s string) (Unit, bool) {
	s = strings.TrimSpace(s)
	for _, u := range ordered {
		if strings.EqualFold(string(u), s) {
			return u, true
		}
	}
	return "", false
}

// Valid indica si la unidad pertenece al catálogo.
func (u Unit) Valid() bool {
	_, ok := catalogue[u]
	return ok
}

// Label nombre legible de la unidad; el propio código si es desconocida.
func (u Unit) Label() string {
	if d, ok := catalogue[u]; ok {
		return d.label
	}
	return string(u)
}

// DimensionOf devuelve la dimensión de la unidad.
func DimensionOf(u Unit) (Dimension, bool) {
	d, ok := catalogue[u]
	if !ok {
		return "", false
	}
	return d.dimension, true
}

// Convert expresa quantity (en from) en la unidad to.
// Si alguna unidad es desconocida o las dimensiones difieren devuelve quantity sin cambios:
// una receta mal cargada no debe tumbar un pedido.
func Convert(quantity decimal.Decimal, from, to Unit) decimal.Decimal {
	if from == to {
		return quantity
	}
	f, okFrom := catalogue[from]
	t, okTo := catalogue[to]
	if !okFrom || !okTo || f.dimension != t.dimension {
		return quantity
	}
	return quantity.Mul(f.factor).Div(t.factor)
}

// Compatible devuelve las unidades que comparten dimensión con u (incluida u).
// Para una unidad desconocida devuelve solo u.
func Compatible(u Unit) []Unit {
	d, ok := catalogue[u]
	if !ok {
		return []Unit{u}
	}
	var out []Unit
	for _, candidate := range ordered {
		if catalogue[candidate].dimension == d.dimension {
			out = append(out, candidate)
		}
	}
	return out
}
