package dto

import "github.com/shopspring/decimal"

// RequirementRequest línea de receta: cantidad de insumo por unidad vendida.
type RequirementRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit,omitempty"` // vacío = unidad del insumo
}

// CreateSellableRequest body para POST /api/sellables.
type CreateSellableRequest struct {
	Kind         string               `json:"kind"` // PRODUCT | SERVICE
	Name         string               `json:"name"`
	SectorID     string               `json:"sector_id,omitempty"`
	Requirements []RequirementRequest `json:"requirements"`
}

// RequirementDTO línea de receta en la respuesta.
type RequirementDTO struct {
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
}

// SellableResponse producto o servicio con su receta.
type SellableResponse struct {
	ID           string           `json:"id"`
	Kind         string           `json:"kind"`
	Name         string           `json:"name"`
	SectorID     string           `json:"sector_id,omitempty"`
	Active       bool             `json:"active"`
	Requirements []RequirementDTO `json:"requirements"`
}
