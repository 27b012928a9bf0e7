package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/units"
)

// SellableUseCase alta de productos y servicios con la receta que descuenta el stock.
type SellableUseCase struct {
	txRunner inventory.TxRunner
}

// NewSellableUseCase construye el caso de uso.
func NewSellableUseCase(txRunner inventory.TxRunner) *SellableUseCase {
	return &SellableUseCase{txRunner: txRunner}
}

// Create valida la receta contra los insumos del tenant y guarda ítem y líneas en una transacción.
// Cada línea debe usar una unidad de la misma dimensión que la del insumo.
func (uc *SellableUseCase) Create(ctx context.Context, tenantID string, in dto.CreateSellableRequest) (*dto.SellableResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	kind := strings.ToUpper(strings.TrimSpace(in.Kind))
	if kind == "" {
		kind = entity.SellableKindProduct
	}
	if kind != entity.SellableKindProduct && kind != entity.SellableKindService {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInput, in.Kind)
	}
	if len(in.Requirements) == 0 {
		return nil, fmt.Errorf("%w: at least one requirement is needed", domain.ErrInvalidInput)
	}

	s := &entity.Sellable{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Kind:     kind,
		Name:     name,
		SectorID: strings.TrimSpace(in.SectorID),
		Active:   true,
	}
	err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		s.Requirements = s.Requirements[:0]
		if s.SectorID != "" {
			sector, err := r.Sectors.GetByID(ctx, tenantID, s.SectorID)
			if err != nil {
				return err
			}
			if sector == nil {
				return fmt.Errorf("%w: sector %s", domain.ErrNotFound, s.SectorID)
			}
		}
		for _, line := range in.Requirements {
			if !line.Quantity.IsPositive() {
				return fmt.Errorf("%w: requirement quantity must be positive", domain.ErrInvalidInput)
			}
			ing, err := r.Ingredients.GetByID(ctx, tenantID, line.IngredientID)
			if err != nil {
				return err
			}
			if ing == nil {
				return fmt.Errorf("%w: ingredient %s", domain.ErrNotFound, line.IngredientID)
			}
			unit := ing.Unit
			if strings.TrimSpace(line.Unit) != "" {
				u, ok := units.Parse(line.Unit)
				if !ok {
					return fmt.Errorf("%w: unknown unit %q", domain.ErrInvalidInput, line.Unit)
				}
				want, _ := units.DimensionOf(ing.Unit)
				if got, _ := units.DimensionOf(u); got != want {
					return fmt.Errorf("%w: unit %s is not compatible with %s (%s)", domain.ErrInvalidInput, u, ing.Name, ing.Unit)
				}
				unit = u
			}
			s.Requirements = append(s.Requirements, entity.Requirement{
				IngredientID: ing.ID,
				Ingredient:   ing,
				Quantity:     line.Quantity,
				Unit:         unit,
			})
		}
		return r.Sellables.Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return toSellableResponse(s), nil
}

func toSellableResponse(s *entity.Sellable) *dto.SellableResponse {
	out := &dto.SellableResponse{
		ID:           s.ID,
		Kind:         s.Kind,
		Name:         s.Name,
		SectorID:     s.SectorID,
		Active:       s.Active,
		Requirements: make([]dto.RequirementDTO, 0, len(s.Requirements)),
	}
	for _, req := range s.Requirements {
		out.Requirements = append(out.Requirements, dto.RequirementDTO{
			IngredientID:   req.IngredientID,
			IngredientName: req.IngredientName(),
			Quantity:       req.Quantity,
			Unit:           string(req.Unit),
		})
	}
	return out
}
