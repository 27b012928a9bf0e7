package repository

import (
	"context"

	"github.com/jhoicas/erp-stock/internal/domain/entity"
)

// SectorRepository puerto de persistencia de sectores de almacenamiento.
type SectorRepository interface {
	// Create devuelve domain.ErrConflict si el nombre ya existe en el tenant.
	Create(ctx context.Context, sector *entity.Sector) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Sector, error)
	// GetCentral devuelve (nil, nil) si el tenant no tiene sector central.
	GetCentral(ctx context.Context, tenantID string) (*entity.Sector, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.Sector, error)
	Update(ctx context.Context, sector *entity.Sector) error
	Delete(ctx context.Context, tenantID, id string) error
	// ReassignSellables mueve los productos/servicios de un sector a otro.
	ReassignSellables(ctx context.Context, tenantID, fromSectorID, toSectorID string) (int64, error)
}
