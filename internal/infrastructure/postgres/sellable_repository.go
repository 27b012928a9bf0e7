package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
)

var _ repository.SellableRepository = (*SellableRepository)(nil)

// SellableRepository alta de productos y servicios con su receta.
type SellableRepository struct {
	q Querier
}

// NewSellableRepository construye el repositorio.
func NewSellableRepository(q Querier) *SellableRepository {
	return &SellableRepository{q: q}
}

// Create inserta el ítem y su receta. Sector e insumos deben ser del mismo tenant: si no,
// no se inserta la fila y se devuelve ErrNotFound. Llamar dentro de una transacción.
func (r *SellableRepository) Create(ctx context.Context, s *entity.Sellable) error {
	if s.SectorID != "" && !validUUID(s.SectorID) {
		return fmt.Errorf("%w: sector %s", domain.ErrNotFound, s.SectorID)
	}
	tag, err := r.q.Exec(ctx, `
		INSERT INTO sellables (id, tenant_id, kind, name, sector_id, active)
		SELECT $1::uuid, $2::text, $3::text, $4::text, $5::uuid, $6::boolean
		WHERE $5::uuid IS NULL OR EXISTS (SELECT 1 FROM stock_sectors WHERE id = $5::uuid AND tenant_id = $2::text)`,
		s.ID, s.TenantID, s.Kind, s.Name, nullable(s.SectorID), s.Active,
	)
	if err != nil {
		return fmt.Errorf("insert sellable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sector %s", domain.ErrNotFound, s.SectorID)
	}
	for i, req := range s.Requirements {
		if !validUUID(req.IngredientID) {
			return fmt.Errorf("%w: ingredient %s", domain.ErrNotFound, req.IngredientID)
		}
		tag, err := r.q.Exec(ctx, `
			INSERT INTO sellable_requirements (sellable_id, position, ingredient_id, quantity, unit)
			SELECT $1::uuid, $2::int, i.id, $4::numeric, $5::text
			FROM ingredients i
			WHERE i.id = $3 AND i.tenant_id = $6`,
			s.ID, i, req.IngredientID, req.Quantity, string(req.Unit), s.TenantID,
		)
		if err != nil {
			return fmt.Errorf("insert requirement: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: ingredient %s", domain.ErrNotFound, req.IngredientID)
		}
	}
	return nil
}
