package repository

import (
	"context"

	"github.com/jhoicas/erp-stock/internal/domain/entity"
)

// OrderRepository puerto hacia pedidos/citas y su catálogo vendible (colaborador externo del motor).
type OrderRepository interface {
	// GetWithRequirements carga el pedido con sus ítems, ítems vendibles, requisitos e insumos.
	// Devuelve (nil, nil) si no existe en el tenant.
	GetWithRequirements(ctx context.Context, tenantID, orderID string) (*entity.Order, error)
	// GetSellables carga ítems vendibles activos con requisitos, indexados por ID.
	GetSellables(ctx context.Context, tenantID string, ids []string) (map[string]*entity.Sellable, error)
	// Create asigna Number (siguiente por tenant) y persiste pedido e ítems.
	Create(ctx context.Context, order *entity.Order) error
	UpdateStatus(ctx context.Context, tenantID, orderID, status string) error
}

// OrderDeductionRepository marcas de descuento por pedido (idempotencia).
type OrderDeductionRepository interface {
	Get(ctx context.Context, tenantID, orderID string) (*entity.OrderDeduction, error)
	// Create devuelve false si la marca ya existía (otro descuento ganó).
	Create(ctx context.Context, deduction *entity.OrderDeduction) (bool, error)
	// MarkRestored devuelve false si ya estaba restaurado o no existe.
	MarkRestored(ctx context.Context, tenantID, orderID string) (bool, error)
}

// SellableRepository alta de productos/servicios con su receta.
type SellableRepository interface {
	// Create falla con ErrNotFound si el sector o algún insumo no pertenecen al tenant del ítem.
	Create(ctx context.Context, sellable *entity.Sellable) error
}
