package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
	"github.com/jhoicas/erp-stock/internal/domain/units"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepository)(nil)

const balanceSelect = `
	SELECT b.tenant_id, b.ingredient_id, b.sector_id, b.quantity, b.updated_at, s.name, s.is_central
	FROM stock_balances b
	JOIN stock_sectors s ON s.id = b.sector_id`

// StockBalanceRepository implementa repository.StockBalanceRepository con PostgreSQL.
type StockBalanceRepository struct {
	q Querier
}

// NewStockBalanceRepository construye el repositorio.
func NewStockBalanceRepository(q Querier) *StockBalanceRepository {
	return &StockBalanceRepository{q: q}
}

func (r *StockBalanceRepository) Get(ctx context.Context, tenantID, ingredientID, sectorID string) (*entity.StockBalance, error) {
	return r.get(ctx, tenantID, ingredientID, sectorID, "")
}

// GetForUpdate bloquea la fila del saldo hasta el fin de la transacción.
func (r *StockBalanceRepository) GetForUpdate(ctx context.Context, tenantID, ingredientID, sectorID string) (*entity.StockBalance, error) {
	return r.get(ctx, tenantID, ingredientID, sectorID, " FOR UPDATE OF b")
}

func (r *StockBalanceRepository) get(ctx context.Context, tenantID, ingredientID, sectorID, lock string) (*entity.StockBalance, error) {
	zero := &entity.StockBalance{
		TenantID:     tenantID,
		IngredientID: ingredientID,
		SectorID:     sectorID,
		Quantity:     decimal.Zero,
	}
	if !validUUID(ingredientID) || !validUUID(sectorID) {
		return zero, nil
	}
	query := balanceSelect + ` WHERE b.tenant_id = $1 AND b.ingredient_id = $2 AND b.sector_id = $3` + lock
	b, err := scanBalance(r.q.QueryRow(ctx, query, tenantID, ingredientID, sectorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return b, nil
}

func (r *StockBalanceRepository) ListByIngredient(ctx context.Context, tenantID, ingredientID string) ([]*entity.StockBalance, error) {
	return r.list(ctx, balanceSelect+` WHERE b.tenant_id = $1 AND b.ingredient_id = $2 ORDER BY b.sector_id`, tenantID, ingredientID)
}

// ListByIngredientForUpdate bloquea los saldos del insumo en orden de sector_id.
func (r *StockBalanceRepository) ListByIngredientForUpdate(ctx context.Context, tenantID, ingredientID string) ([]*entity.StockBalance, error) {
	return r.list(ctx, balanceSelect+` WHERE b.tenant_id = $1 AND b.ingredient_id = $2 ORDER BY b.sector_id FOR UPDATE OF b`, tenantID, ingredientID)
}

func (r *StockBalanceRepository) ListBySector(ctx context.Context, tenantID, sectorID string) ([]*entity.StockBalance, error) {
	return r.list(ctx, balanceSelect+` WHERE b.tenant_id = $1 AND b.sector_id = $2 ORDER BY b.ingredient_id`, tenantID, sectorID)
}

func (r *StockBalanceRepository) list(ctx context.Context, query, tenantID, id string) ([]*entity.StockBalance, error) {
	if !validUUID(id) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, query, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("list stock balances: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *StockBalanceRepository) TotalAvailable(ctx context.Context, tenantID, ingredientID string) (decimal.Decimal, error) {
	if !validUUID(ingredientID) {
		return decimal.Zero, nil
	}
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_balances WHERE tenant_id = $1 AND ingredient_id = $2`,
		tenantID, ingredientID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total stock: %w", err)
	}
	return total, nil
}

// AddQuantity suma delta en la base de datos (quantity = quantity + delta), sin leer antes.
func (r *StockBalanceRepository) AddQuantity(ctx context.Context, tenantID, ingredientID, sectorID string, delta decimal.Decimal) error {
	query := `
		INSERT INTO stock_balances (tenant_id, ingredient_id, sector_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (ingredient_id, sector_id)
		DO UPDATE SET quantity = stock_balances.quantity + EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, tenantID, ingredientID, sectorID, delta); err != nil {
		return fmt.Errorf("add stock quantity: %w", err)
	}
	return nil
}

func (r *StockBalanceRepository) SetQuantity(ctx context.Context, tenantID, ingredientID, sectorID string, quantity decimal.Decimal) error {
	query := `
		INSERT INTO stock_balances (tenant_id, ingredient_id, sector_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (ingredient_id, sector_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, tenantID, ingredientID, sectorID, quantity); err != nil {
		return fmt.Errorf("set stock quantity: %w", err)
	}
	return nil
}

func (r *StockBalanceRepository) Delete(ctx context.Context, tenantID, ingredientID, sectorID string) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM stock_balances WHERE tenant_id = $1 AND ingredient_id = $2 AND sector_id = $3`,
		tenantID, ingredientID, sectorID,
	)
	if err != nil {
		return fmt.Errorf("delete stock balance: %w", err)
	}
	return nil
}

// ListBelowMinimum saldos bajo el mínimo, mayor déficit primero.
func (r *StockBalanceRepository) ListBelowMinimum(ctx context.Context, tenantID string) ([]repository.CriticalStockRow, error) {
	query := `
		SELECT i.id, i.tenant_id, i.name, i.unit, i.cost_price, i.min_stock, i.category_id, i.active,
		       i.created_at, i.updated_at, b.sector_id, s.name, b.quantity
		FROM stock_balances b
		JOIN ingredients i ON i.id = b.ingredient_id
		JOIN stock_sectors s ON s.id = b.sector_id
		WHERE b.tenant_id = $1 AND i.active AND b.quantity < i.min_stock
		ORDER BY (i.min_stock - b.quantity) DESC, i.name, s.name`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list critical stock: %w", err)
	}
	defer rows.Close()

	var list []repository.CriticalStockRow
	for rows.Next() {
		var row repository.CriticalStockRow
		var unit string
		ing := &row.Ingredient
		if err := rows.Scan(
			&ing.ID, &ing.TenantID, &ing.Name, &unit, &ing.CostPrice, &ing.MinStock, &ing.CategoryID, &ing.Active,
			&ing.CreatedAt, &ing.UpdatedAt, &row.SectorID, &row.SectorName, &row.CurrentStock,
		); err != nil {
			return nil, fmt.Errorf("scan critical stock: %w", err)
		}
		ing.Unit = units.Unit(unit)
		list = append(list, row)
	}
	return list, rows.Err()
}

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := row.Scan(&b.TenantID, &b.IngredientID, &b.SectorID, &b.Quantity, &b.UpdatedAt, &b.SectorName, &b.SectorIsCentral)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
