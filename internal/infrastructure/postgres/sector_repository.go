package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
)

var _ repository.SectorRepository = (*SectorRepository)(nil)

const sectorColumns = `id, tenant_id, name, description, is_central, created_at, updated_at`

// SectorRepository implementa repository.SectorRepository con PostgreSQL.
type SectorRepository struct {
	q Querier
}

// NewSectorRepository construye el repositorio.
func NewSectorRepository(q Querier) *SectorRepository {
	return &SectorRepository{q: q}
}

func (r *SectorRepository) Create(ctx context.Context, s *entity.Sector) error {
	query := `
		INSERT INTO stock_sectors (id, tenant_id, name, description, is_central, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, s.ID, s.TenantID, s.Name, s.Description, s.IsCentral, s.CreatedAt, s.CreatedAt)
	if err != nil {
		// Cubre el nombre duplicado y el índice parcial de un solo central por tenant.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sector %q already exists", domain.ErrConflict, s.Name)
		}
		return fmt.Errorf("insert sector: %w", err)
	}
	return nil
}

func (r *SectorRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Sector, error) {
	if !validUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + sectorColumns + ` FROM stock_sectors WHERE tenant_id = $1 AND id = $2`
	return r.getOne(ctx, query, tenantID, id)
}

func (r *SectorRepository) GetCentral(ctx context.Context, tenantID string) (*entity.Sector, error) {
	query := `SELECT ` + sectorColumns + ` FROM stock_sectors WHERE tenant_id = $1 AND is_central`
	return r.getOne(ctx, query, tenantID)
}

func (r *SectorRepository) getOne(ctx context.Context, query string, args ...any) (*entity.Sector, error) {
	s, err := scanSector(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sector: %w", err)
	}
	return s, nil
}

func (r *SectorRepository) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Sector, error) {
	query := `SELECT ` + sectorColumns + ` FROM stock_sectors WHERE tenant_id = $1 ORDER BY is_central DESC, name`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()

	var list []*entity.Sector
	for rows.Next() {
		s, err := scanSector(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SectorRepository) Update(ctx context.Context, s *entity.Sector) error {
	query := `
		UPDATE stock_sectors SET name = $3, description = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, s.TenantID, s.ID, s.Name, s.Description, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sector %q already exists", domain.ErrConflict, s.Name)
		}
		return fmt.Errorf("update sector: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SectorRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_sectors WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: sector %s still has balances", domain.ErrConflict, id)
		}
		return fmt.Errorf("delete sector: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SectorRepository) ReassignSellables(ctx context.Context, tenantID, fromSectorID, toSectorID string) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE sellables SET sector_id = $3 WHERE tenant_id = $1 AND sector_id = $2`,
		tenantID, fromSectorID, toSectorID,
	)
	if err != nil {
		return 0, fmt.Errorf("reassign sellables: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSector(row pgx.Row) (*entity.Sector, error) {
	var s entity.Sector
	if err := row.Scan(&s.ID, &s.TenantID, &s.Name, &s.Description, &s.IsCentral, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
