package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/domain/entity"
)

// IngredientRepository puerto de persistencia de insumos. Toda consulta filtra por tenant.
type IngredientRepository interface {
	Create(ctx context.Context, ingredient *entity.Ingredient) error
	// GetByID devuelve (nil, nil) si no existe o pertenece a otro tenant.
	GetByID(ctx context.Context, tenantID, id string) (*entity.Ingredient, error)
	ListActive(ctx context.Context, tenantID string) ([]*entity.Ingredient, error)
	UpdateCost(ctx context.Context, tenantID, id string, cost decimal.Decimal) error
	Deactivate(ctx context.Context, tenantID, id string) error
}
