package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRequest body para POST /api/stock/transfer.
type TransferRequest struct {
	IngredientID string          `json:"ingredient_id"`
	FromSectorID string          `json:"from_sector_id"`
	ToSectorID   string          `json:"to_sector_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       string          `json:"reason,omitempty"`
	UserID       string          `json:"-"`
}

// EntryRequest body para POST /api/stock/entry.
// UnitCost opcional: si viene, recalcula el costo promedio ponderado del insumo.
type EntryRequest struct {
	IngredientID string           `json:"ingredient_id"`
	SectorID     string           `json:"sector_id"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	UserID       string           `json:"-"`
}

// AdjustmentRequest body para POST /api/stock/adjustment (conteo físico).
type AdjustmentRequest struct {
	IngredientID string          `json:"ingredient_id"`
	SectorID     string          `json:"sector_id"`
	NewQuantity  decimal.Decimal `json:"new_quantity"`
	Reason       string          `json:"reason,omitempty"`
	UserID       string          `json:"-"`
}

// MovementDTO salida de un movimiento del libro.
type MovementDTO struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredient_id"`
	FromSectorID string          `json:"from_sector_id,omitempty"`
	ToSectorID   string          `json:"to_sector_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Type         string          `json:"type"`
	Reason       string          `json:"reason"`
	OrderID      string          `json:"order_id,omitempty"`
	CreatedBy    string          `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// MovementResult resultado de transfer/entry/adjustment. Nunca se devuelve como error:
// los fallos esperados vienen con Success=false y Message.
type MovementResult struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Movement *MovementDTO `json:"movement,omitempty"`
	Err      error        `json:"-"` // sentinel de dominio para mapear a HTTP
}

// MovementListResponse historial de movimientos.
type MovementListResponse struct {
	Items []MovementDTO `json:"items"`
}

// DeductionLine un descuento parcial (insumo, sector, cantidad).
type DeductionLine struct {
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	SectorID       string          `json:"sector_id"`
	SectorName     string          `json:"sector_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Overdraft      bool            `json:"overdraft,omitempty"` // saldo negativo forzado
}

// DeductionResult resultado de descontar el stock de un pedido.
type DeductionResult struct {
	Success    bool            `json:"success"`
	OrderID    string          `json:"order_id"`
	Deductions []DeductionLine `json:"deductions"`
	Errors     []string        `json:"errors,omitempty"`
	Err        error           `json:"-"`
}

// CriticalStockItem saldo por debajo del mínimo.
type CriticalStockItem struct {
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	SectorID       string          `json:"sector_id"`
	SectorName     string          `json:"sector_name"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	MinStock       decimal.Decimal `json:"min_stock"`
	Deficit        decimal.Decimal `json:"deficit"` // MinStock - CurrentStock
}

// BalanceDTO saldo de un insumo en un sector.
type BalanceDTO struct {
	IngredientID string          `json:"ingredient_id"`
	SectorID     string          `json:"sector_id"`
	SectorName   string          `json:"sector_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
