package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/domain/entity"
)

// CriticalStockRow saldo por debajo del mínimo del insumo.
type CriticalStockRow struct {
	Ingredient   entity.Ingredient
	SectorID     string
	SectorName   string
	CurrentStock decimal.Decimal
}

// StockBalanceRepository puerto de saldos por (insumo, sector). Usado dentro de transacciones.
// Los incrementos y decrementos se delegan al motor (quantity = quantity + delta).
type StockBalanceRepository interface {
	// Get devuelve un saldo en cero si la fila no existe.
	Get(ctx context.Context, tenantID, ingredientID, sectorID string) (*entity.StockBalance, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, ingredientID, sectorID string) (*entity.StockBalance, error)
	// ListByIngredient saldos del insumo en todos los sectores, con nombre y marca de central.
	ListByIngredient(ctx context.Context, tenantID, ingredientID string) ([]*entity.StockBalance, error)
	// ListByIngredientForUpdate igual que ListByIngredient pero bloquea las filas.
	ListByIngredientForUpdate(ctx context.Context, tenantID, ingredientID string) ([]*entity.StockBalance, error)
	ListBySector(ctx context.Context, tenantID, sectorID string) ([]*entity.StockBalance, error)
	// TotalAvailable suma de cantidades del insumo en todos los sectores del tenant.
	TotalAvailable(ctx context.Context, tenantID, ingredientID string) (decimal.Decimal, error)
	// AddQuantity upsert: crea la fila con delta o suma delta a la existente (delta puede ser negativo).
	AddQuantity(ctx context.Context, tenantID, ingredientID, sectorID string, delta decimal.Decimal) error
	// SetQuantity upsert: fija la cantidad.
	SetQuantity(ctx context.Context, tenantID, ingredientID, sectorID string, quantity decimal.Decimal) error
	Delete(ctx context.Context, tenantID, ingredientID, sectorID string) error
	// ListBelowMinimum saldos de insumos activos con cantidad < stock mínimo.
	ListBelowMinimum(ctx context.Context, tenantID string) ([]CriticalStockRow, error)
}
