package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
)

// Repos repositorios ligados a una misma conexión o transacción.
type Repos struct {
	Ingredients repository.IngredientRepository
	Sectors     repository.SectorRepository
	Balances    repository.StockBalanceRepository
	Movements   repository.StockMovementRepository
	Orders      repository.OrderRepository
	Sellables   repository.SellableRepository
	Deductions  repository.OrderDeductionRepository
}

// TxRunner ejecuta una función dentro de una transacción (Begin/Commit/Rollback).
// Los repos recibidos están ligados a la transacción; si fn devuelve error se hace Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// MovementPublisher notifica movimientos ya confirmados (Kafka u otro bus).
type MovementPublisher interface {
	Publish(ctx context.Context, movements []*entity.StockMovement) error
}

// CriticalStockRenderer genera el reporte de stock crítico en PDF.
type CriticalStockRenderer interface {
	Render(tenantID string, generatedAt time.Time, items []dto.CriticalStockItem) ([]byte, error)
}
