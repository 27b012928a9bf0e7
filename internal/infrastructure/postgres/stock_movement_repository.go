package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepository)(nil)

const movementSelect = `
	SELECT id, tenant_id, ingredient_id, COALESCE(from_sector_id::text, ''), COALESCE(to_sector_id::text, ''),
	       quantity, type, reason, COALESCE(order_id::text, ''), created_by, created_at
	FROM stock_movements`

// StockMovementRepository libro de movimientos: solo INSERT y SELECT.
type StockMovementRepository struct {
	q Querier
}

// NewStockMovementRepository construye el repositorio.
func NewStockMovementRepository(q Querier) *StockMovementRepository {
	return &StockMovementRepository{q: q}
}

func (r *StockMovementRepository) Create(ctx context.Context, m *entity.StockMovement) error {
	if !m.Quantity.IsPositive() {
		return fmt.Errorf("%w: movement quantity must be positive", domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO stock_movements (id, tenant_id, ingredient_id, from_sector_id, to_sector_id,
			quantity, type, reason, order_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.IngredientID, nullable(m.FromSectorID), nullable(m.ToSectorID),
		m.Quantity, string(m.Type), m.Reason, nullable(m.OrderID), m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func (r *StockMovementRepository) ListByOrder(ctx context.Context, tenantID, orderID string, movementType entity.MovementType) ([]*entity.StockMovement, error) {
	if !validUUID(orderID) {
		return nil, nil
	}
	query := movementSelect + ` WHERE tenant_id = $1 AND order_id = $2 AND type = $3 ORDER BY created_at, id`
	return r.query(ctx, query, tenantID, orderID, string(movementType))
}

// List historial más reciente primero.
func (r *StockMovementRepository) List(ctx context.Context, tenantID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.IngredientID != "" {
		if !validUUID(f.IngredientID) {
			return nil, nil
		}
		add("ingredient_id = $%d", f.IngredientID)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	query := movementSelect + ` WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return r.query(ctx, query, args...)
}

func (r *StockMovementRepository) query(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var typ string
	err := row.Scan(
		&m.ID, &m.TenantID, &m.IngredientID, &m.FromSectorID, &m.ToSectorID,
		&m.Quantity, &typ, &m.Reason, &m.OrderID, &m.CreatedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	return &m, nil
}
