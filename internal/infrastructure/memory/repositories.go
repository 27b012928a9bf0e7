package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
)

// ── Insumos ──────────────────────────────────────────────────────────────────

// IngredientRepository implementa repository.IngredientRepository.
type IngredientRepository struct{ a *access }

func (r *IngredientRepository) Create(_ context.Context, ing *entity.Ingredient) error {
	return r.a.with(func(st *state) error {
		if _, ok := st.ingredients[ing.ID]; ok {
			return fmt.Errorf("%w: ingredient %s already exists", domain.ErrConflict, ing.ID)
		}
		st.ingredients[ing.ID] = *ing
		return nil
	})
}

func (r *IngredientRepository) GetByID(_ context.Context, tenantID, id string) (*entity.Ingredient, error) {
	var out *entity.Ingredient
	err := r.a.with(func(st *state) error {
		if ing, ok := st.ingredients[id]; ok && ing.TenantID == tenantID {
			out = &ing
		}
		return nil
	})
	return out, err
}

func (r *IngredientRepository) ListActive(_ context.Context, tenantID string) ([]*entity.Ingredient, error) {
	var out []*entity.Ingredient
	err := r.a.with(func(st *state) error {
		for _, ing := range st.ingredients {
			if ing.TenantID == tenantID && ing.Active {
				ing := ing
				out = append(out, &ing)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *IngredientRepository) UpdateCost(_ context.Context, tenantID, id string, cost decimal.Decimal) error {
	return r.a.with(func(st *state) error {
		ing, ok := st.ingredients[id]
		if !ok || ing.TenantID != tenantID {
			return domain.ErrNotFound
		}
		ing.CostPrice = cost
		ing.UpdatedAt = time.Now()
		st.ingredients[id] = ing
		return nil
	})
}

func (r *IngredientRepository) Deactivate(_ context.Context, tenantID, id string) error {
	return r.a.with(func(st *state) error {
		ing, ok := st.ingredients[id]
		if !ok || ing.TenantID != tenantID {
			return domain.ErrNotFound
		}
		ing.Active = false
		ing.UpdatedAt = time.Now()
		st.ingredients[id] = ing
		return nil
	})
}

// ── Sectores ─────────────────────────────────────────────────────────────────

// SectorRepository implementa repository.SectorRepository.
type SectorRepository struct{ a *access }

func (r *SectorRepository) Create(_ context.Context, s *entity.Sector) error {
	return r.a.with(func(st *state) error {
		for _, other := range st.sectors {
			if other.TenantID != s.TenantID {
				continue
			}
			if other.Name == s.Name {
				return fmt.Errorf("%w: sector %q already exists", domain.ErrConflict, s.Name)
			}
			if s.IsCentral && other.IsCentral {
				return fmt.Errorf("%w: tenant already has a central warehouse", domain.ErrConflict)
			}
		}
		st.sectors[s.ID] = *s
		return nil
	})
}

func (r *SectorRepository) GetByID(_ context.Context, tenantID, id string) (*entity.Sector, error) {
	var out *entity.Sector
	err := r.a.with(func(st *state) error {
		if s, ok := st.sectors[id]; ok && s.TenantID == tenantID {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SectorRepository) GetCentral(_ context.Context, tenantID string) (*entity.Sector, error) {
	var out *entity.Sector
	err := r.a.with(func(st *state) error {
		for _, s := range st.sectors {
			if s.TenantID == tenantID && s.IsCentral {
				s := s
				out = &s
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *SectorRepository) ListByTenant(_ context.Context, tenantID string) ([]*entity.Sector, error) {
	var out []*entity.Sector
	err := r.a.with(func(st *state) error {
		for _, s := range st.sectors {
			if s.TenantID == tenantID {
				s := s
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsCentral != out[j].IsCentral {
			return out[i].IsCentral
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (r *SectorRepository) Update(_ context.Context, s *entity.Sector) error {
	return r.a.with(func(st *state) error {
		cur, ok := st.sectors[s.ID]
		if !ok || cur.TenantID != s.TenantID {
			return domain.ErrNotFound
		}
		for _, other := range st.sectors {
			if other.ID != s.ID && other.TenantID == s.TenantID && other.Name == s.Name {
				return fmt.Errorf("%w: sector %q already exists", domain.ErrConflict, s.Name)
			}
		}
		cur.Name = s.Name
		cur.Description = s.Description
		cur.UpdatedAt = s.UpdatedAt
		st.sectors[s.ID] = cur
		return nil
	})
}

func (r *SectorRepository) Delete(_ context.Context, tenantID, id string) error {
	return r.a.with(func(st *state) error {
		s, ok := st.sectors[id]
		if !ok || s.TenantID != tenantID {
			return domain.ErrNotFound
		}
		// Igual que la FK de stock_balances: no se borra un sector con saldos.
		for k := range st.balances {
			if k.sectorID == id {
				return fmt.Errorf("%w: sector %s still has balances", domain.ErrConflict, id)
			}
		}
		delete(st.sectors, id)
		return nil
	})
}

func (r *SectorRepository) ReassignSellables(_ context.Context, tenantID, fromSectorID, toSectorID string) (int64, error) {
	var n int64
	err := r.a.with(func(st *state) error {
		for id, s := range st.sellables {
			if s.TenantID == tenantID && s.SectorID == fromSectorID {
				s.SectorID = toSectorID
				st.sellables[id] = s
				n++
			}
		}
		return nil
	})
	return n, err
}

// ── Saldos ───────────────────────────────────────────────────────────────────

// StockBalanceRepository implementa repository.StockBalanceRepository.
// Dentro de Run el mutex del store ya actúa como SELECT FOR UPDATE.
type StockBalanceRepository struct{ a *access }

func withSector(st *state, b entity.StockBalance) *entity.StockBalance {
	if s, ok := st.sectors[b.SectorID]; ok {
		b.SectorName = s.Name
		b.SectorIsCentral = s.IsCentral
	}
	return &b
}

func (r *StockBalanceRepository) get(tenantID, ingredientID, sectorID string) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	err := r.a.with(func(st *state) error {
		b, ok := st.balances[balanceKey{ingredientID, sectorID}]
		if !ok || b.TenantID != tenantID {
			b = entity.StockBalance{TenantID: tenantID, IngredientID: ingredientID, SectorID: sectorID, Quantity: decimal.Zero}
		}
		out = withSector(st, b)
		return nil
	})
	return out, err
}

func (r *StockBalanceRepository) Get(_ context.Context, tenantID, ingredientID, sectorID string) (*entity.StockBalance, error) {
	return r.get(tenantID, ingredientID, sectorID)
}

func (r *StockBalanceRepository) GetForUpdate(_ context.Context, tenantID, ingredientID, sectorID string) (*entity.StockBalance, error) {
	return r.get(tenantID, ingredientID, sectorID)
}

func (r *StockBalanceRepository) list(match func(entity.StockBalance) bool) ([]*entity.StockBalance, error) {
	var out []*entity.StockBalance
	err := r.a.with(func(st *state) error {
		for _, b := range st.balances {
			if match(b) {
				out = append(out, withSector(st, b))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SectorID != out[j].SectorID {
			return out[i].SectorID < out[j].SectorID
		}
		return out[i].IngredientID < out[j].IngredientID
	})
	return out, err
}

func (r *StockBalanceRepository) ListByIngredient(_ context.Context, tenantID, ingredientID string) ([]*entity.StockBalance, error) {
	return r.list(func(b entity.StockBalance) bool {
		return b.TenantID == tenantID && b.IngredientID == ingredientID
	})
}

func (r *StockBalanceRepository) ListByIngredientForUpdate(ctx context.Context, tenantID, ingredientID string) ([]*entity.StockBalance, error) {
	return r.ListByIngredient(ctx, tenantID, ingredientID)
}

func (r *StockBalanceRepository) ListBySector(_ context.Context, tenantID, sectorID string) ([]*entity.StockBalance, error) {
	return r.list(func(b entity.StockBalance) bool {
		return b.TenantID == tenantID && b.SectorID == sectorID
	})
}

func (r *StockBalanceRepository) TotalAvailable(_ context.Context, tenantID, ingredientID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.a.with(func(st *state) error {
		for _, b := range st.balances {
			if b.TenantID == tenantID && b.IngredientID == ingredientID {
				total = total.Add(b.Quantity)
			}
		}
		return nil
	})
	return total, err
}

// checkRefs emula las FK de stock_balances hacia ingredients y stock_sectors.
func checkRefs(st *state, tenantID, ingredientID, sectorID string) error {
	if ing, ok := st.ingredients[ingredientID]; !ok || ing.TenantID != tenantID {
		return fmt.Errorf("%w: ingredient %s", domain.ErrNotFound, ingredientID)
	}
	if s, ok := st.sectors[sectorID]; !ok || s.TenantID != tenantID {
		return fmt.Errorf("%w: sector %s", domain.ErrNotFound, sectorID)
	}
	return nil
}

func (r *StockBalanceRepository) AddQuantity(_ context.Context, tenantID, ingredientID, sectorID string, delta decimal.Decimal) error {
	return r.a.with(func(st *state) error {
		if err := checkRefs(st, tenantID, ingredientID, sectorID); err != nil {
			return err
		}
		k := balanceKey{ingredientID, sectorID}
		b, ok := st.balances[k]
		if !ok {
			b = entity.StockBalance{TenantID: tenantID, IngredientID: ingredientID, SectorID: sectorID, Quantity: decimal.Zero}
		}
		b.Quantity = b.Quantity.Add(delta)
		b.UpdatedAt = time.Now()
		st.balances[k] = b
		return nil
	})
}

func (r *StockBalanceRepository) SetQuantity(_ context.Context, tenantID, ingredientID, sectorID string, quantity decimal.Decimal) error {
	return r.a.with(func(st *state) error {
		if err := checkRefs(st, tenantID, ingredientID, sectorID); err != nil {
			return err
		}
		st.balances[balanceKey{ingredientID, sectorID}] = entity.StockBalance{
			TenantID:     tenantID,
			IngredientID: ingredientID,
			SectorID:     sectorID,
			Quantity:     quantity,
			UpdatedAt:    time.Now(),
		}
		return nil
	})
}

func (r *StockBalanceRepository) Delete(_ context.Context, tenantID, ingredientID, sectorID string) error {
	return r.a.with(func(st *state) error {
		k := balanceKey{ingredientID, sectorID}
		if b, ok := st.balances[k]; ok && b.TenantID == tenantID {
			delete(st.balances, k)
		}
		return nil
	})
}

func (r *StockBalanceRepository) ListBelowMinimum(_ context.Context, tenantID string) ([]repository.CriticalStockRow, error) {
	var out []repository.CriticalStockRow
	err := r.a.with(func(st *state) error {
		for _, b := range st.balances {
			if b.TenantID != tenantID {
				continue
			}
			ing, ok := st.ingredients[b.IngredientID]
			if !ok || !ing.Active || !b.Quantity.LessThan(ing.MinStock) {
				continue
			}
			out = append(out, repository.CriticalStockRow{
				Ingredient:   ing,
				SectorID:     b.SectorID,
				SectorName:   st.sectors[b.SectorID].Name,
				CurrentStock: b.Quantity,
			})
		}
		return nil
	})
	return out, err
}

// ── Movimientos ──────────────────────────────────────────────────────────────

// StockMovementRepository implementa repository.StockMovementRepository (solo inserción).
type StockMovementRepository struct{ a *access }

func (r *StockMovementRepository) Create(_ context.Context, m *entity.StockMovement) error {
	if !m.Quantity.IsPositive() {
		return fmt.Errorf("%w: movement quantity must be positive", domain.ErrInvalidInput)
	}
	return r.a.with(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *StockMovementRepository) ListByOrder(_ context.Context, tenantID, orderID string, t entity.MovementType) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.a.with(func(st *state) error {
		for _, m := range st.movements {
			if m.TenantID == tenantID && m.OrderID == orderID && (t == "" || m.Type == t) {
				m := m
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

func (r *StockMovementRepository) List(_ context.Context, tenantID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.a.with(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			switch {
			case m.TenantID != tenantID,
				f.IngredientID != "" && m.IngredientID != f.IngredientID,
				f.Type != "" && m.Type != f.Type,
				f.From != nil && m.CreatedAt.Before(*f.From),
				f.To != nil && m.CreatedAt.After(*f.To):
				continue
			}
			out = append(out, &m)
			if f.Limit > 0 && len(out) == f.Limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// ── Pedidos y catálogo ───────────────────────────────────────────────────────

// OrderRepository implementa repository.OrderRepository.
type OrderRepository struct{ a *access }

// loadSellable copia el ítem con su receta y los insumos resueltos.
func loadSellable(st *state, s entity.Sellable) *entity.Sellable {
	reqs := make([]entity.Requirement, 0, len(s.Requirements))
	for _, req := range s.Requirements {
		ing, ok := st.ingredients[req.IngredientID]
		if !ok || ing.TenantID != s.TenantID {
			continue
		}
		req.Ingredient = &ing
		reqs = append(reqs, req)
	}
	s.Requirements = reqs
	return &s
}

func (r *OrderRepository) GetWithRequirements(_ context.Context, tenantID, orderID string) (*entity.Order, error) {
	var out *entity.Order
	err := r.a.with(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok || o.TenantID != tenantID {
			return nil
		}
		items := make([]entity.OrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			if s, ok := st.sellables[it.SellableID]; ok && s.TenantID == tenantID {
				it.Sellable = loadSellable(st, s)
			}
			items = append(items, it)
		}
		o.Items = items
		out = &o
		return nil
	})
	return out, err
}

func (r *OrderRepository) GetSellables(_ context.Context, tenantID string, ids []string) (map[string]*entity.Sellable, error) {
	out := make(map[string]*entity.Sellable, len(ids))
	err := r.a.with(func(st *state) error {
		for _, id := range ids {
			if s, ok := st.sellables[id]; ok && s.TenantID == tenantID && s.Active {
				out[id] = loadSellable(st, s)
			}
		}
		return nil
	})
	return out, err
}

func (r *OrderRepository) Create(_ context.Context, o *entity.Order) error {
	return r.a.with(func(st *state) error {
		var last int64
		for _, other := range st.orders {
			if other.TenantID == o.TenantID && other.Number > last {
				last = other.Number
			}
		}
		o.Number = last + 1
		stored := *o
		stored.Items = make([]entity.OrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			stored.Items = append(stored.Items, entity.OrderItem{SellableID: it.SellableID, Quantity: it.Quantity})
		}
		st.orders[o.ID] = stored
		return nil
	})
}

func (r *OrderRepository) UpdateStatus(_ context.Context, tenantID, orderID, status string) error {
	return r.a.with(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok || o.TenantID != tenantID {
			return domain.ErrNotFound
		}
		o.Status = status
		o.UpdatedAt = time.Now()
		st.orders[orderID] = o
		return nil
	})
}

// SellableRepository implementa repository.SellableRepository.
type SellableRepository struct{ a *access }

func (r *SellableRepository) Create(_ context.Context, s *entity.Sellable) error {
	return r.a.with(func(st *state) error {
		if s.SectorID != "" {
			if sec, ok := st.sectors[s.SectorID]; !ok || sec.TenantID != s.TenantID {
				return fmt.Errorf("%w: sector %s", domain.ErrNotFound, s.SectorID)
			}
		}
		stored := *s
		stored.Requirements = make([]entity.Requirement, 0, len(s.Requirements))
		for _, req := range s.Requirements {
			if ing, ok := st.ingredients[req.IngredientID]; !ok || ing.TenantID != s.TenantID {
				return fmt.Errorf("%w: ingredient %s", domain.ErrNotFound, req.IngredientID)
			}
			req.Ingredient = nil
			stored.Requirements = append(stored.Requirements, req)
		}
		st.sellables[s.ID] = stored
		return nil
	})
}

// OrderDeductionRepository implementa repository.OrderDeductionRepository.
type OrderDeductionRepository struct{ a *access }

func (r *OrderDeductionRepository) Get(_ context.Context, tenantID, orderID string) (*entity.OrderDeduction, error) {
	var out *entity.OrderDeduction
	err := r.a.with(func(st *state) error {
		if d, ok := st.deductions[orderID]; ok && d.TenantID == tenantID {
			out = &d
		}
		return nil
	})
	return out, err
}

func (r *OrderDeductionRepository) Create(_ context.Context, d *entity.OrderDeduction) (bool, error) {
	created := false
	err := r.a.with(func(st *state) error {
		if _, ok := st.deductions[d.OrderID]; ok {
			return nil
		}
		st.deductions[d.OrderID] = *d
		created = true
		return nil
	})
	return created, err
}

func (r *OrderDeductionRepository) MarkRestored(_ context.Context, tenantID, orderID string) (bool, error) {
	restored := false
	err := r.a.with(func(st *state) error {
		d, ok := st.deductions[orderID]
		if !ok || d.TenantID != tenantID || d.RestoredAt != nil {
			return nil
		}
		now := time.Now()
		d.RestoredAt = &now
		st.deductions[orderID] = d
		restored = true
		return nil
	})
	return restored, err
}

var (
	_ repository.IngredientRepository     = (*IngredientRepository)(nil)
	_ repository.SectorRepository         = (*SectorRepository)(nil)
	_ repository.StockBalanceRepository   = (*StockBalanceRepository)(nil)
	_ repository.StockMovementRepository  = (*StockMovementRepository)(nil)
	_ repository.OrderRepository          = (*OrderRepository)(nil)
	_ repository.SellableRepository       = (*SellableRepository)(nil)
	_ repository.OrderDeductionRepository = (*OrderDeductionRepository)(nil)
)
