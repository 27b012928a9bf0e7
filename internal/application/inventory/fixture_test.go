package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
	"github.com/jhoicas/erp-stock/internal/domain/units"
	"github.com/jhoicas/erp-stock/internal/infrastructure/memory"
)

const tenant = "restaurant"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixture tenant con almacén central, cocina y barra sobre el store en memoria.
type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *memory.Store
	repos   inventory.Repos
	central *entity.Sector
	kitchen *entity.Sector
	bar     *entity.Sector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{t: t, ctx: context.Background(), store: store, repos: store.Repos()}
	f.central = f.sector(tenant, "Central Warehouse", true)
	f.kitchen = f.sector(tenant, "Kitchen", false)
	f.bar = f.sector(tenant, "Bar", false)
	return f
}

func (f *fixture) sector(tenantID, name string, central bool) *entity.Sector {
	f.t.Helper()
	s := &entity.Sector{ID: uuid.New().String(), TenantID: tenantID, Name: name, IsCentral: central, CreatedAt: time.Now()}
	require.NoError(f.t, f.repos.Sectors.Create(f.ctx, s))
	return s
}

func (f *fixture) ingredient(name string, unit units.Unit, minStock string) *entity.Ingredient {
	f.t.Helper()
	ing := &entity.Ingredient{
		ID:        uuid.New().String(),
		TenantID:  tenant,
		Name:      name,
		Unit:      unit,
		CostPrice: decimal.Zero,
		MinStock:  dec(minStock),
		Active:    true,
		CreatedAt: time.Now(),
	}
	require.NoError(f.t, f.repos.Ingredients.Create(f.ctx, ing))
	return ing
}

func (f *fixture) stock(ing *entity.Ingredient, sector *entity.Sector, qty string) {
	f.t.Helper()
	require.NoError(f.t, f.repos.Balances.AddQuantity(f.ctx, tenant, ing.ID, sector.ID, dec(qty)))
}

func (f *fixture) balance(ing *entity.Ingredient, sector *entity.Sector) decimal.Decimal {
	f.t.Helper()
	b, err := f.repos.Balances.Get(f.ctx, tenant, ing.ID, sector.ID)
	require.NoError(f.t, err)
	return b.Quantity
}

func (f *fixture) total(ing *entity.Ingredient) decimal.Decimal {
	f.t.Helper()
	total, err := f.repos.Balances.TotalAvailable(f.ctx, tenant, ing.ID)
	require.NoError(f.t, err)
	return total
}

func req(ing *entity.Ingredient, qty string, unit units.Unit) entity.Requirement {
	return entity.Requirement{IngredientID: ing.ID, Quantity: dec(qty), Unit: unit}
}

func (f *fixture) product(name string, sector *entity.Sector, reqs ...entity.Requirement) *entity.Sellable {
	f.t.Helper()
	s := &entity.Sellable{
		ID:           uuid.New().String(),
		TenantID:     tenant,
		Kind:         entity.SellableKindProduct,
		Name:         name,
		Active:       true,
		Requirements: reqs,
	}
	if sector != nil {
		s.SectorID = sector.ID
	}
	require.NoError(f.t, f.repos.Sellables.Create(f.ctx, s))
	return s
}

// order crea un pedido OPEN sin descontar.
func (f *fixture) order(items ...entity.OrderItem) *entity.Order {
	f.t.Helper()
	o := &entity.Order{
		ID:        uuid.New().String(),
		TenantID:  tenant,
		Source:    entity.OrderSourcePOS,
		Status:    entity.OrderStatusOpen,
		Items:     items,
		CreatedAt: time.Now(),
	}
	require.NoError(f.t, f.store.Run(f.ctx, func(r inventory.Repos) error {
		return r.Orders.Create(f.ctx, o)
	}))
	return o
}

func line(s *entity.Sellable, qty string) entity.OrderItem {
	return entity.OrderItem{SellableID: s.ID, Sellable: s, Quantity: dec(qty)}
}

// loaded ítems con receta resuelta, como los arma la orquestación.
func (f *fixture) loaded(items ...entity.OrderItem) []entity.OrderItem {
	f.t.Helper()
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.SellableID)
	}
	m, err := f.repos.Orders.GetSellables(f.ctx, tenant, ids)
	require.NoError(f.t, err)
	out := make([]entity.OrderItem, 0, len(items))
	for _, it := range items {
		it.Sellable = m[it.SellableID]
		out = append(out, it)
	}
	return out
}

func (f *fixture) movements(t entity.MovementType) []*entity.StockMovement {
	f.t.Helper()
	list, err := f.repos.Movements.List(f.ctx, tenant, repository.MovementFilter{Type: t})
	require.NoError(f.t, err)
	return list
}

// staleBalances simula la foto de validación desactualizada: TotalAvailable devuelve un valor fijo.
type staleBalances struct {
	repository.StockBalanceRepository
	total decimal.Decimal
}

func (s staleBalances) TotalAvailable(context.Context, string, string) (decimal.Decimal, error) {
	return s.total, nil
}

// brokenBalances simula una caída del almacenamiento al leer el disponible.
type brokenBalances struct {
	repository.StockBalanceRepository
}

func (brokenBalances) TotalAvailable(context.Context, string, string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("connection reset by peer")
}

func (f *fixture) brokenEngine(policy inventory.Policy) *inventory.DeductionEngine {
	reader := f.repos
	reader.Balances = brokenBalances{StockBalanceRepository: f.repos.Balances}
	return inventory.NewDeductionEngine(f.store, reader, nil, policy, nil)
}

func (f *fixture) deductionEngine(policy inventory.Policy) *inventory.DeductionEngine {
	return inventory.NewDeductionEngine(f.store, f.repos, nil, policy, nil)
}

func (f *fixture) staleEngine(policy inventory.Policy, total string) *inventory.DeductionEngine {
	reader := f.repos
	reader.Balances = staleBalances{StockBalanceRepository: f.repos.Balances, total: dec(total)}
	return inventory.NewDeductionEngine(f.store, reader, nil, policy, nil)
}
