package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
	"github.com/jhoicas/erp-stock/internal/domain/units"
)

var _ repository.IngredientRepository = (*IngredientRepository)(nil)

const ingredientColumns = `id, tenant_id, name, unit, cost_price, min_stock, category_id, active, created_at, updated_at`

// IngredientRepository implementa repository.IngredientRepository con PostgreSQL.
type IngredientRepository struct {
	q Querier
}

// NewIngredientRepository construye el repositorio.
func NewIngredientRepository(q Querier) *IngredientRepository {
	return &IngredientRepository{q: q}
}

func (r *IngredientRepository) Create(ctx context.Context, ing *entity.Ingredient) error {
	query := `
		INSERT INTO ingredients (id, tenant_id, name, unit, cost_price, min_stock, category_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		ing.ID, ing.TenantID, ing.Name, string(ing.Unit), ing.CostPrice, ing.MinStock,
		ing.CategoryID, ing.Active, ing.CreatedAt, ing.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ingredient %s already exists", domain.ErrConflict, ing.ID)
		}
		return fmt.Errorf("insert ingredient: %w", err)
	}
	return nil
}

func (r *IngredientRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Ingredient, error) {
	if !validUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE tenant_id = $1 AND id = $2`
	ing, err := scanIngredient(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return ing, nil
}

func (r *IngredientRepository) ListActive(ctx context.Context, tenantID string) ([]*entity.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE tenant_id = $1 AND active ORDER BY name`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	var list []*entity.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, ing)
	}
	return list, rows.Err()
}

func (r *IngredientRepository) UpdateCost(ctx context.Context, tenantID, id string, cost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE ingredients SET cost_price = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, cost,
	)
	if err != nil {
		return fmt.Errorf("update ingredient cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *IngredientRepository) Deactivate(ctx context.Context, tenantID, id string) error {
	if !validUUID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE ingredients SET active = FALSE, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("deactivate ingredient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanIngredient(row pgx.Row) (*entity.Ingredient, error) {
	var ing entity.Ingredient
	var unit string
	err := row.Scan(
		&ing.ID, &ing.TenantID, &ing.Name, &unit, &ing.CostPrice, &ing.MinStock,
		&ing.CategoryID, &ing.Active, &ing.CreatedAt, &ing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ing.Unit = units.Unit(unit)
	return &ing, nil
}
