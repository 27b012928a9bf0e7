package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
)

var _ repository.OrderDeductionRepository = (*OrderDeductionRepository)(nil)

// OrderDeductionRepository marcas de descuento (order_stock_deductions).
type OrderDeductionRepository struct {
	q Querier
}

// NewOrderDeductionRepository construye el repositorio.
func NewOrderDeductionRepository(q Querier) *OrderDeductionRepository {
	return &OrderDeductionRepository{q: q}
}

func (r *OrderDeductionRepository) Get(ctx context.Context, tenantID, orderID string) (*entity.OrderDeduction, error) {
	if !validUUID(orderID) {
		return nil, nil
	}
	var d entity.OrderDeduction
	err := r.q.QueryRow(ctx, `
		SELECT tenant_id, order_id, order_number, deducted_at, restored_at
		FROM order_stock_deductions WHERE tenant_id = $1 AND order_id = $2`,
		tenantID, orderID,
	).Scan(&d.TenantID, &d.OrderID, &d.OrderNumber, &d.DeductedAt, &d.RestoredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order deduction: %w", err)
	}
	return &d, nil
}

// Create inserta la marca; una transacción concurrente con la misma orden espera al commit
// de la primera y no inserta nada.
func (r *OrderDeductionRepository) Create(ctx context.Context, d *entity.OrderDeduction) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO order_stock_deductions (order_id, tenant_id, order_number, deducted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id) DO NOTHING`,
		d.OrderID, d.TenantID, d.OrderNumber, d.DeductedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert order deduction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderDeductionRepository) MarkRestored(ctx context.Context, tenantID, orderID string) (bool, error) {
	if !validUUID(orderID) {
		return false, nil
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE order_stock_deductions SET restored_at = now()
		WHERE tenant_id = $1 AND order_id = $2 AND restored_at IS NULL`,
		tenantID, orderID,
	)
	if err != nil {
		return false, fmt.Errorf("mark order restored: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
