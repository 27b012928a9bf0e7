package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-stock/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	IngredientID string
	Type         entity.MovementType
	From         *time.Time
	To           *time.Time
	Limit        int
}

// StockMovementRepository puerto del libro de movimientos (solo inserción y lectura).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByOrder(ctx context.Context, tenantID, orderID string, movementType entity.MovementType) ([]*entity.StockMovement, error)
	List(ctx context.Context, tenantID string, filter MovementFilter) ([]*entity.StockMovement, error)
}
