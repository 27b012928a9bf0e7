package entity

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/domain/units"
)

// Tipos de ítem vendible.
const (
	SellableKindProduct = "PRODUCT" // producto de restaurante (ficha técnica)
	SellableKindService = "SERVICE" // servicio de salón (requisitos de insumos)
)

// Sellable producto o servicio que consume insumos al venderse.
// SectorID es el sector donde se prepara o presta; tiene prioridad al descontar.
type Sellable struct {
	ID           string
	TenantID     string
	Kind         string
	Name         string
	SectorID     string
	Active       bool
	Requirements []Requirement
}

// Requirement línea de receta / requisito: cantidad de insumo por unidad vendida.
type Requirement struct {
	IngredientID string
	Ingredient   *Ingredient
	Quantity     decimal.Decimal
	Unit         units.Unit // vacío = unidad canónica del insumo
}

// QuantityInStockUnit convierte la cantidad de la línea a la unidad canónica del insumo.
func (r Requirement) QuantityInStockUnit() decimal.Decimal {
	if r.Ingredient == nil {
		return r.Quantity
	}
	from := r.Unit
	if from == "" {
		from = r.Ingredient.Unit
	}
	return units.Convert(r.Quantity, from, r.Ingredient.Unit)
}

// IngredientName nombre del insumo o su ID si no se cargó.
func (r Requirement) IngredientName() string {
	if r.Ingredient == nil {
		return r.IngredientID
	}
	return r.Ingredient.Name
}
