package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
	"github.com/jhoicas/erp-stock/internal/domain/units"
)

var _ repository.OrderRepository = (*OrderRepository)(nil)

// OrderRepository pedidos y citas con su catálogo vendible.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository construye el repositorio.
func NewOrderRepository(q Querier) *OrderRepository {
	return &OrderRepository{q: q}
}

func (r *OrderRepository) GetWithRequirements(ctx context.Context, tenantID, orderID string) (*entity.Order, error) {
	if !validUUID(orderID) {
		return nil, nil
	}
	var o entity.Order
	err := r.q.QueryRow(ctx, `
		SELECT id, tenant_id, order_number, source, status, created_at, updated_at
		FROM orders WHERE tenant_id = $1 AND id = $2`,
		tenantID, orderID,
	).Scan(&o.ID, &o.TenantID, &o.Number, &o.Source, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.q.Query(ctx,
		`SELECT sellable_id, quantity FROM order_items WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.SellableID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
		ids = append(ids, it.SellableID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Un ítem desactivado después de la venta sigue contando para su pedido.
	sellables, err := r.loadSellables(ctx, tenantID, ids, false)
	if err != nil {
		return nil, err
	}
	for i := range o.Items {
		o.Items[i].Sellable = sellables[o.Items[i].SellableID]
	}
	return &o, nil
}

func (r *OrderRepository) GetSellables(ctx context.Context, tenantID string, ids []string) (map[string]*entity.Sellable, error) {
	return r.loadSellables(ctx, tenantID, ids, true)
}

func (r *OrderRepository) loadSellables(ctx context.Context, tenantID string, ids []string, onlyActive bool) (map[string]*entity.Sellable, error) {
	out := make(map[string]*entity.Sellable, len(ids))
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	query := `
		SELECT id, tenant_id, kind, name, COALESCE(sector_id::text, ''), active
		FROM sellables WHERE tenant_id = $1 AND id = ANY($2::uuid[])`
	if onlyActive {
		query += ` AND active`
	}
	rows, err := r.q.Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("list sellables: %w", err)
	}
	var found []string
	for rows.Next() {
		var s entity.Sellable
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Kind, &s.Name, &s.SectorID, &s.Active); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sellable: %w", err)
		}
		out[s.ID] = &s
		found = append(found, s.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return out, nil
	}

	rows, err = r.q.Query(ctx, `
		SELECT r.sellable_id, r.quantity, r.unit,
		       i.id, i.tenant_id, i.name, i.unit, i.cost_price, i.min_stock, i.category_id, i.active,
		       i.created_at, i.updated_at
		FROM sellable_requirements r
		JOIN ingredients i ON i.id = r.ingredient_id AND i.tenant_id = $2
		WHERE r.sellable_id = ANY($1::uuid[])
		ORDER BY r.sellable_id, r.position`, found, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sellableID, reqUnit, ingUnit string
		var req entity.Requirement
		ing := &entity.Ingredient{}
		if err := rows.Scan(
			&sellableID, &req.Quantity, &reqUnit,
			&ing.ID, &ing.TenantID, &ing.Name, &ingUnit, &ing.CostPrice, &ing.MinStock, &ing.CategoryID, &ing.Active,
			&ing.CreatedAt, &ing.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		ing.Unit = units.Unit(ingUnit)
		req.IngredientID = ing.ID
		req.Ingredient = ing
		req.Unit = units.Unit(reqUnit)
		s := out[sellableID]
		s.Requirements = append(s.Requirements, req)
	}
	return out, rows.Err()
}

// Create numera el pedido con MAX+1 bajo un advisory lock por tenant.
// Debe llamarse dentro de una transacción: el lock se libera en el commit.
func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('orders:' || $1))`, o.TenantID); err != nil {
		return fmt.Errorf("lock order sequence: %w", err)
	}
	if err := r.q.QueryRow(ctx,
		`SELECT COALESCE(MAX(order_number), 0) + 1 FROM orders WHERE tenant_id = $1`, o.TenantID,
	).Scan(&o.Number); err != nil {
		return fmt.Errorf("next order number: %w", err)
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (id, tenant_id, order_number, source, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		o.ID, o.TenantID, o.Number, o.Source, o.Status, o.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: order number %d already taken", domain.ErrConflict, o.Number)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	for i, it := range o.Items {
		_, err := r.q.Exec(ctx,
			`INSERT INTO order_items (order_id, position, sellable_id, quantity) VALUES ($1, $2, $3, $4)`,
			o.ID, i, it.SellableID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, tenantID, orderID, status string) error {
	if !validUUID(orderID) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, orderID, status,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
