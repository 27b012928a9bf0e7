// Package memory implementa los puertos de persistencia en memoria.
// Un mutex global serializa las transacciones (equivale a bloquear todas las filas);
// Run trabaja sobre una copia del estado y la publica solo si fn no devuelve error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
)

type balanceKey struct {
	ingredientID string
	sectorID     string
}

type state struct {
	ingredients map[string]entity.Ingredient
	sectors     map[string]entity.Sector
	balances    map[balanceKey]entity.StockBalance
	movements   []entity.StockMovement
	sellables   map[string]entity.Sellable
	orders      map[string]entity.Order
	deductions  map[string]entity.OrderDeduction // por order id
}

func newState() *state {
	return &state{
		ingredients: map[string]entity.Ingredient{},
		sectors:     map[string]entity.Sector{},
		balances:    map[balanceKey]entity.StockBalance{},
		sellables:   map[string]entity.Sellable{},
		orders:      map[string]entity.Order{},
		deductions:  map[string]entity.OrderDeduction{},
	}
}

// clone copia el estado; los slices internos (ítems, recetas) se copian al escribir.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.ingredients {
		c.ingredients[k] = v
	}
	for k, v := range s.sectors {
		c.sectors[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	c.movements = append(make([]entity.StockMovement, 0, len(s.movements)), s.movements...)
	for k, v := range s.sellables {
		c.sellables[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.deductions {
		c.deductions[k] = v
	}
	return c
}

// Store almacén en memoria. Sirve como TxRunner y expone repositorios fuera de transacción.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn con repositorios ligados a una copia del estado; Commit si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(s.repos(work)); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Repos repositorios fuera de transacción (cada operación es atómica por sí sola).
func (s *Store) Repos() inventory.Repos {
	return s.repos(nil)
}

func (s *Store) repos(tx *state) inventory.Repos {
	a := &access{store: s, tx: tx}
	return inventory.Repos{
		Ingredients: &IngredientRepository{a},
		Sectors:     &SectorRepository{a},
		Balances:    &StockBalanceRepository{a},
		Movements:   &StockMovementRepository{a},
		Orders:      &OrderRepository{a},
		Sellables:   &SellableRepository{a},
		Deductions:  &OrderDeductionRepository{a},
	}
}

// access resuelve sobre qué estado opera un repositorio.
type access struct {
	store *Store
	tx    *state
}

func (a *access) with(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return fn(a.store.state)
}

var _ inventory.TxRunner = (*Store)(nil)
