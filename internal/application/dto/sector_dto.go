package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSectorRequest entrada para crear un sector.
type CreateSectorRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateSectorRequest entrada para actualizar un sector.
type UpdateSectorRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// SectorResponse salida de un sector.
type SectorResponse struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	IsCentral   bool         `json:"is_central"`
	Balances    []BalanceDTO `json:"balances,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// DeleteSectorResponse resumen de la migración al almacén central.
type DeleteSectorResponse struct {
	DeletedSectorID   string `json:"deleted_sector_id"`
	CentralSectorID   string `json:"central_sector_id"`
	MovedBalances     int    `json:"moved_balances"`
	ReassignedProduct int64  `json:"reassigned_products"`
}

// CreateIngredientRequest entrada para crear un insumo.
type CreateIngredientRequest struct {
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	MinStock   decimal.Decimal `json:"min_stock"`
	CategoryID string          `json:"category_id,omitempty"`
}

// IngredientResponse salida de un insumo.
type IngredientResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	UnitLabel  string          `json:"unit_label"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	MinStock   decimal.Decimal `json:"min_stock"`
	CategoryID string          `json:"category_id,omitempty"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IngredientStockResponse saldos de un insumo por sector y total.
type IngredientStockResponse struct {
	Ingredient IngredientResponse `json:"ingredient"`
	Total      decimal.Decimal    `json:"total"`
	Balances   []BalanceDTO       `json:"balances"`
}

// UnitDTO unidad del catálogo.
type UnitDTO struct {
	Code       string   `json:"code"`
	Label      string   `json:"label"`
	Dimension  string   `json:"dimension"`
	Compatible []string `json:"compatible"`
}
