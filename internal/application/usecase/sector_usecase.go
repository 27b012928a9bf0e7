package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

// SectorUseCase gestión de sectores de almacenamiento.
// La eliminación migra saldos y productos al almacén central en una sola transacción.
type SectorUseCase struct {
	txRunner  inventory.TxRunner
	reader    inventory.Repos
	publisher inventory.MovementPublisher
	log       *logger.Logger
}

// NewSectorUseCase construye el caso de uso. publisher puede ser nil.
func NewSectorUseCase(txRunner inventory.TxRunner, reader inventory.Repos, publisher inventory.MovementPublisher, log *logger.Logger) *SectorUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SectorUseCase{txRunner: txRunner, reader: reader, publisher: publisher, log: log}
}

// Create crea un sector. El nombre es único por tenant.
func (uc *SectorUseCase) Create(ctx context.Context, tenantID string, in dto.CreateSectorRequest) (*dto.SectorResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	now := time.Now()
	sector := &entity.Sector{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.reader.Sectors.Create(ctx, sector); err != nil {
		return nil, err
	}
	return toSectorResponse(sector), nil
}

// EnsureCentral devuelve el almacén central del tenant, creándolo si no existe.
func (uc *SectorUseCase) EnsureCentral(ctx context.Context, tenantID, name string) (*entity.Sector, error) {
	central, err := uc.reader.Sectors.GetCentral(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if central != nil {
		return central, nil
	}
	now := time.Now()
	central = &entity.Sector{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        name,
		Description: "Central warehouse",
		IsCentral:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.reader.Sectors.Create(ctx, central); err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("sector_id", central.ID).Msg("almacén central creado")
	return central, nil
}

// GetByID obtiene un sector con sus saldos. Devuelve (nil, nil) si no existe.
func (uc *SectorUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.SectorResponse, error) {
	sector, err := uc.reader.Sectors.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if sector == nil {
		return nil, nil
	}
	balances, err := uc.reader.Balances.ListBySector(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := toSectorResponse(sector)
	for _, b := range balances {
		resp.Balances = append(resp.Balances, toBalanceDTO(b))
	}
	return resp, nil
}

// List lista los sectores del tenant (el central primero).
func (uc *SectorUseCase) List(ctx context.Context, tenantID string) ([]dto.SectorResponse, error) {
	list, err := uc.reader.Sectors.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SectorResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSectorResponse(s))
	}
	return items, nil
}

// Update renombra o describe un sector. Devuelve (nil, nil) si no existe.
func (uc *SectorUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateSectorRequest) (*dto.SectorResponse, error) {
	sector, err := uc.reader.Sectors.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if sector == nil {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		sector.Name = name
	}
	if in.Description != nil {
		sector.Description = strings.TrimSpace(*in.Description)
	}
	sector.UpdatedAt = time.Now()
	if err := uc.reader.Sectors.Update(ctx, sector); err != nil {
		return nil, err
	}
	return toSectorResponse(sector), nil
}

// Delete elimina un sector que no sea el central. Antes, dentro de la misma transacción:
// reasigna sus productos al central y suma cada saldo al saldo del central (o lo crea),
// registrando una transferencia por saldo movido. Los movimientos históricos no se tocan.
func (uc *SectorUseCase) Delete(ctx context.Context, tenantID, id, userID string) (*dto.DeleteSectorResponse, error) {
	var (
		resp dto.DeleteSectorResponse
		movs []*entity.StockMovement
	)
	err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		resp, movs = dto.DeleteSectorResponse{}, nil

		sector, err := r.Sectors.GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if sector == nil {
			return domain.ErrNotFound
		}
		if sector.IsCentral {
			return domain.ErrCentralSector
		}
		central, err := r.Sectors.GetCentral(ctx, tenantID)
		if err != nil {
			return err
		}
		if central == nil {
			return fmt.Errorf("%w: tenant has no central warehouse to receive the stock", domain.ErrConflict)
		}

		n, err := r.Sectors.ReassignSellables(ctx, tenantID, sector.ID, central.ID)
		if err != nil {
			return err
		}

		balances, err := r.Balances.ListBySector(ctx, tenantID, sector.ID)
		if err != nil {
			return err
		}
		now := time.Now()
		// Mismo orden de bloqueo que el descuento: por insumo y, dentro de él, por sector.
		pair := []string{sector.ID, central.ID}
		sort.Strings(pair)
		for _, b := range balances {
			var qty decimal.Decimal
			for _, sid := range pair {
				locked, err := r.Balances.GetForUpdate(ctx, tenantID, b.IngredientID, sid)
				if err != nil {
					return err
				}
				if sid == sector.ID {
					qty = locked.Quantity
				}
			}
			if !qty.IsZero() {
				if err := r.Balances.AddQuantity(ctx, tenantID, b.IngredientID, central.ID, qty); err != nil {
					return err
				}
				mov := &entity.StockMovement{
					ID:           uuid.New().String(),
					TenantID:     tenantID,
					IngredientID: b.IngredientID,
					FromSectorID: sector.ID,
					ToSectorID:   central.ID,
					Quantity:     qty.Abs(),
					Type:         entity.MovementTypeTransfer,
					Reason:       fmt.Sprintf("Sector %s deleted: stock moved to %s", sector.Name, central.Name),
					CreatedAt:    now,
					CreatedBy:    userID,
				}
				// Un saldo negativo migra como deuda: sale del central hacia el sector.
				if qty.IsNegative() {
					mov.FromSectorID, mov.ToSectorID = central.ID, sector.ID
				}
				if err := r.Movements.Create(ctx, mov); err != nil {
					return err
				}
				movs = append(movs, mov)
			}
			if err := r.Balances.Delete(ctx, tenantID, b.IngredientID, sector.ID); err != nil {
				return err
			}
			resp.MovedBalances++
		}

		if err := r.Sectors.Delete(ctx, tenantID, sector.ID); err != nil {
			return err
		}
		resp.DeletedSectorID = sector.ID
		resp.CentralSectorID = central.ID
		resp.ReassignedProduct = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.publisher != nil && len(movs) > 0 {
		if err := uc.publisher.Publish(ctx, movs); err != nil {
			uc.log.Error().Err(err).Msg("no se pudieron publicar movimientos de stock")
		}
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("sector_id", id).
		Int("balances", resp.MovedBalances).
		Int64("products", resp.ReassignedProduct).
		Msg("sector eliminado y migrado al central")
	return &resp, nil
}

func toSectorResponse(s *entity.Sector) *dto.SectorResponse {
	if s == nil {
		return nil
	}
	return &dto.SectorResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		IsCentral:   s.IsCentral,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toBalanceDTO(b *entity.StockBalance) dto.BalanceDTO {
	return dto.BalanceDTO{
		IngredientID: b.IngredientID,
		SectorID:     b.SectorID,
		SectorName:   b.SectorName,
		Quantity:     b.Quantity,
		UpdatedAt:    b.UpdatedAt,
	}
}
