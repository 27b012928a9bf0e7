package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/units"
)

// IngredientUseCase alta, consulta y baja lógica de insumos. El stock se maneja vía movimientos.
type IngredientUseCase struct {
	reader inventory.Repos
}

// NewIngredientUseCase construye el caso de uso.
func NewIngredientUseCase(reader inventory.Repos) *IngredientUseCase {
	return &IngredientUseCase{reader: reader}
}

// Create crea un insumo activo. La unidad debe pertenecer al catálogo.
func (uc *IngredientUseCase) Create(ctx context.Context, tenantID string, in dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	unit, ok := units.Parse(in.Unit)
	if !ok {
		return nil, fmt.Errorf("%w: unknown unit %q", domain.ErrInvalidInput, in.Unit)
	}
	if in.CostPrice.IsNegative() || in.MinStock.IsNegative() {
		return nil, fmt.Errorf("%w: cost_price and min_stock cannot be negative", domain.ErrInvalidInput)
	}
	now := time.Now()
	ing := &entity.Ingredient{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		Name:       name,
		Unit:       unit,
		CostPrice:  in.CostPrice,
		MinStock:   in.MinStock,
		CategoryID: in.CategoryID,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.reader.Ingredients.Create(ctx, ing); err != nil {
		return nil, err
	}
	return toIngredientResponse(ing), nil
}

// List lista los insumos activos del tenant.
func (uc *IngredientUseCase) List(ctx context.Context, tenantID string) ([]dto.IngredientResponse, error) {
	list, err := uc.reader.Ingredients.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.IngredientResponse, 0, len(list))
	for _, ing := range list {
		items = append(items, *toIngredientResponse(ing))
	}
	return items, nil
}

// Stock saldos del insumo por sector y total.
func (uc *IngredientUseCase) Stock(ctx context.Context, tenantID, id string) (*dto.IngredientStockResponse, error) {
	ing, err := uc.reader.Ingredients.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, domain.ErrNotFound
	}
	balances, err := uc.reader.Balances.ListByIngredient(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.IngredientStockResponse{
		Ingredient: *toIngredientResponse(ing),
		Total:      decimal.Zero,
		Balances:   make([]dto.BalanceDTO, 0, len(balances)),
	}
	for _, b := range balances {
		resp.Total = resp.Total.Add(b.Quantity)
		resp.Balances = append(resp.Balances, toBalanceDTO(b))
	}
	return resp, nil
}

// Deactivate baja lógica: el insumo deja de listarse pero recetas y movimientos siguen válidos.
func (uc *IngredientUseCase) Deactivate(ctx context.Context, tenantID, id string) error {
	ing, err := uc.reader.Ingredients.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if ing == nil {
		return domain.ErrNotFound
	}
	return uc.reader.Ingredients.Deactivate(ctx, tenantID, id)
}

// Units catálogo de unidades con sus compatibles (selectores de recetas).
func (uc *IngredientUseCase) Units() []dto.UnitDTO {
	all := units.All()
	out := make([]dto.UnitDTO, 0, len(all))
	for _, u := range all {
		dim, _ := units.DimensionOf(u)
		item := dto.UnitDTO{Code: string(u), Label: u.Label(), Dimension: string(dim)}
		for _, c := range units.Compatible(u) {
			item.Compatible = append(item.Compatible, string(c))
		}
		out = append(out, item)
	}
	return out
}

func toIngredientResponse(ing *entity.Ingredient) *dto.IngredientResponse {
	return &dto.IngredientResponse{
		ID:         ing.ID,
		Name:       ing.Name,
		Unit:       string(ing.Unit),
		UnitLabel:  ing.Unit.Label(),
		CostPrice:  ing.CostPrice,
		MinStock:   ing.MinStock,
		CategoryID: ing.CategoryID,
		Active:     ing.Active,
		CreatedAt:  ing.CreatedAt,
	}
}
