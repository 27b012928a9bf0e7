package inventory_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/units"
)

func sumLines(lines []dto.DeductionLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Quantity)
	}
	return total
}

func sumMovements(list []*entity.StockMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range list {
		total = total.Add(m.Quantity)
	}
	return total
}

// ── ValidateAvailability ──────────────────────────────────────────────────────

func TestValidateAvailability_HayStock(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient("Flour", units.Kilogram, "5")
	f.stock(flour, f.central, "50")
	bread := f.product("Bread", f.kitchen, req(flour, "0.5", units.Kilogram))

	errs := f.deductionEngine(inventory.PolicyStrict).ValidateAvailability(f.ctx, tenant, f.loaded(line(bread, "10")))
	assert.Empty(t, errs)
}

func TestValidateAvailability_InsuficienteMensajeConTresDecimales(t *testing.T) {
	f := newFixture(t)
	wine := f.ingredient("Wine", units.Liter, "0")
	f.stock(wine, f.bar, "2")
	glass := f.product("Wine glass", f.bar, req(wine, "1", units.Liter))

	errs := f.deductionEngine(inventory.PolicyStrict).ValidateAvailability(f.ctx, tenant, f.loaded(line(glass, "3")))

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Wine")
	assert.Contains(t, errs[0], "3.000")
	assert.Contains(t, errs[0], "2.000")
}

func TestValidateAvailability_SumaEntreItemsYConvierteUnidades(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient("Flour", units.Kilogram, "0")
	f.stock(flour, f.central, "1")
	f.stock(flour, f.kitchen, "0.2")
	bread := f.product("Bread", f.kitchen, req(flour, "500", units.Gram))
	cake := f.product("Cake", f.kitchen, req(flour, "0.3", units.Kilogram))

	engine := f.deductionEngine(inventory.PolicyStrict)

	// 2×0.5 + 1×0.3 = 1.3 > 1.2
	errs := engine.ValidateAvailability(f.ctx, tenant, f.loaded(line(bread, "2"), line(cake, "1")))
	require.Len(t, errs, 1)
	assert.Equal(t, "insufficient stock of Flour: required 1.300, available 1.200", errs[0])

	assert.Empty(t, engine.ValidateAvailability(f.ctx, tenant, f.loaded(line(bread, "1"), line(cake, "1"))))
}

func TestCheckAvailability_FalloDeLecturaNoEsFaltante(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient("Flour", units.Kilogram, "0")
	f.stock(flour, f.central, "50")
	bread := f.product("Bread", f.kitchen, req(flour, "0.5", units.Kilogram))
	engine := f.brokenEngine(inventory.PolicyStrict)

	msgs, err := engine.CheckAvailability(f.ctx, tenant, f.loaded(line(bread, "1")))
	assert.Nil(t, msgs)
	assert.ErrorIs(t, err, domain.ErrTransactionFailure)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	// La variante que nunca falla devuelve el mensaje genérico, no un faltante.
	errs := engine.ValidateAvailability(f.ctx, tenant, f.loaded(line(bread, "1")))
	assert.Equal(t, []string{"stock transaction failed, no changes were applied"}, errs)
}

// ── DeductByOrder ─────────────────────────────────────────────────────────────

func TestDeductByOrder_CaminoFeliz(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient("Flour", units.Kilogram, "5")
	f.stock(flour, f.central, "50")
	bread := f.product("Bread", f.kitchen, req(flour, "0.5", units.Kilogram))
	order := f.order(line(bread, "10"))

	res := f.deductionEngine(inventory.PolicyStrict).DeductByOrder(f.ctx, tenant, order.ID)

	require.True(t, res.Success, res.Errors)
	require.Len(t, res.Deductions, 1)
	assert.Equal(t, f.central.ID, res.Deductions[0].SectorID)
	assertDec(t, "5", res.Deductions[0].Quantity)
	assertDec(t, "45", f.balance(flour, f.central))

	exits := f.movements(entity.MovementTypeExit)
	require.Len(t, exits, 1)
	assert.Equal(t, f.central.ID, exits[0].FromSectorID)
	assert.Empty(t, exits[0].ToSectorID)
	assert.Equal(t, order.ID, exits[0].OrderID)
	assert.Equal(t, "Order #1 - Bread (Central Warehouse)", exits[0].Reason)
}

func TestDeductByOrder_PrioridadSectorDelItemLuegoCentralLuegoResto(t *testing.T) {
	f := newFixture(t)
	lemon := f.ingredient("Lemon", units.Piece, "0")
	f.stock(lemon, f.bar, "2")
	f.stock(lemon, f.central, "3")
	terrace := f.sector(tenant, "Terrace", false)
	f.stock(lemon, terrace, "20")
	f.stock(lemon, f.kitchen, "1")
	drink := f.product("Lemonade", f.bar, req(lemon, "1", units.Piece))
	order := f.order(line(drink, "7"))

	res := f.deductionEngine(inventory.PolicyStrict).DeductByOrder(f.ctx, tenant, order.ID)
	require.True(t, res.Success, res.Errors)

	require.Len(t, res.Deductions, 3)
	assert.Equal(t, f.bar.ID, res.Deductions[0].SectorID)
	assertDec(t, "2", res.Deductions[0].Quantity)
	assert.Equal(t, f.central.ID, res.Deductions[1].SectorID)
	assertDec(t, "3", res.Deductions[1].Quantity)
	// Entre el resto, primero el de mayor cantidad.
	assert.Equal(t, terrace.ID, res.Deductions[2].SectorID)
	assertDec(t, "2", res.Deductions[2].Quantity)

	assertDec(t, "0", f.balance(lemon, f.bar))
	assertDec(t, "0", f.balance(lemon, f.central))
	assertDec(t, "18", f.balance(lemon, terrace))
	assertDec(t, "1", f.balance(lemon, f.kitchen))
	assert.Len(t, f.movements(entity.MovementTypeExit), 3)
}

func TestDeductByOrder_ConservaElTotal(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient("Flour", units.Kilogram, "0")
	egg := f.ingredient("Egg", units.Piece, "0")
	f.stock(flour, f.kitchen, "0.4")
	f.stock(flour, f.central, "3")
	f.stock(egg, f.central, "12")
	bread := f.product("Bread", f.kitchen, req(flour, "250", units.Gram), req(egg, "1", ""))
	cake := f.product("Cake", f.kitchen, req(flour, "0.5", units.Kilogram), req(egg, "3", units.Piece))
	order := f.order(line(bread, "4"), line(cake, "2"))

	beforeFlour, beforeEgg := f.total(flour), f.total(egg)
	res := f.deductionEngine(inventory.PolicyStrict).DeductByOrder(f.ctx, tenant, order.ID)
	require.True(t, res.Success, res.Errors)

	deducted := map[string]decimal.Decimal{}
	for _, l := range res.Deductions {
		deducted[l.IngredientID] = deducted[l.IngredientID].Add(l.Quantity)
	}
	assertDec(t, "2", deducted[flour.ID])
	assertDec(t, "10", deducted[egg.ID])
	assert.True(t, beforeFlour.Sub(deducted[flour.ID]).Equal(f.total(flour)))
	assert.True(t, beforeEgg.Sub(deducted[egg.ID]).Equal(f.total(egg)))
	assertDec(t, "0", f.balance(flour, f.kitchen))
	assertDec(t, "1.4", f.balance(flour, f.central))
}

func TestDeductByOrder_SegundaVezYaProcesado(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient("Flour", units.Kilogram, "0")
	f.stock(flour, f.central, "50")
	bread := f.product("Bread", f.kitchen, req(flour, "0.5", units.Kilogram))
	order := f.order(line(bread, "10"))
	engine := f.deductionEngine(inventory.PolicyStrict)

	require.True(t, engine.DeductByOrder(f.ctx, tenant, order.ID).Success)
	second := engine.DeductByOrder(f.ctx, tenant, order.ID)

	assert.False(t, second.Success)
	assert.ErrorIs(t, second.Err, domain.ErrAlreadyProcessed)
	assert.Equal(t, []string{"deduction already performed for this order"}, second.Errors)
	assert.Empty(t, second.Deductions)
	assertDec(t, "45", f.balance(flour, f.central))
	assert.Len(t, f.movements(entity.MovementTypeExit), 1)
}

func TestDeductByOrder_PedidoInexistente(t *testing.T) {
	f := newFixture(t)

	res := f.deductionEngine(inventory.PolicyStrict).DeductByOrder(f.ctx, tenant, "missing")
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrNotFound)
	assert.Equal(t, []string{"order not found"}, res.Errors)
}

func TestDeductByOrder_PedidoDeOtroTenantNoExiste(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient("Flour", units.Kilogram, "0")
	f.stock(flour, f.central, "50")
	bread := f.product("Bread", f.kitchen, req(flour, "0.5", units.Kilogram))
	order := f.order(line(bread, "1"))

	res := f.deductionEngine(inventory.PolicyStrict).DeductByOrder(f.ctx, "salon", order.ID)
	assert.ErrorIs(t, res.Err, domain.ErrNotFound)
	assertDec(t, "50", f.balance(flour, f.central))
}

func TestDeductByOrder_InsuficienteSinMutacion(t *testing.T) {
	f := newFixture(t)
	wine := f.ingredient("Wine", units.Liter, "0")
	f.stock(wine, f.bar, "2")
	glass := f.product("Wine glass", f.bar, req(wine, "1", units.Liter))
	order := f.order(line(glass, "3"))

	res := f.deductionEngine(inventory.PolicyStrict).DeductByOrder(f.ctx, tenant, order.ID)

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrInsufficientStock)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Wine")
	assertDec(t, "2", f.balance(wine, f.bar))
	assert.Empty(t, f.movements(""))

	mark, err := f.repos.Deductions.Get(f.ctx, tenant, order.ID)
	require.NoError(t, err)
	assert.Nil(t, mark)
}

func TestDeductByOrder_FalloDeLecturaEsFalloDeTransaccion(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient("Flour", units.Kilogram, "0")
	f.stock(flour, f.central, "50")
	bread := f.product("Bread", f.kitchen, req(flour, "0.5", units.Kilogram))
	order := f.order(line(bread, "2"))

	res := f.brokenEngine(inventory.PolicyLenient).DeductByOrder(f.ctx, tenant, order.ID)

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrTransactionFailure)
	assert.Equal(t, []string{"stock transaction failed, no changes were applied"}, res.Errors)
	assertDec(t, "50", f.balance(flour, f.central))
	assert.Empty(t, f.movements(""))
}

func TestDeductByOrder_EstrictoRevalidaBajoBloqueo(t *testing.T) {
	f := newFixture(t)
	steak := f.ingredient("Steak", units.Piece, "0")
	f.stock(steak, f.central, "3")
	dish := f.product("Steak dish", f.kitchen, req(steak, "1", units.Piece))
	order := f.order(line(dish, "5"))

	// La validación previa ve 10 (foto vieja); dentro de la transacción solo hay 3.
	res := f.staleEngine(inventory.PolicyStrict, "10").DeductByOrder(f.ctx, tenant, order.ID)

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrInsufficientStock)
	assert.Equal(t, []string{"insufficient stock of Steak: required 5.000, available 3.000"}, res.Errors)
	assertDec(t, "3", f.balance(steak, f.central))
	assert.Empty(t, f.movements(""))

	mark, err := f.repos.Deductions.Get(f.ctx, tenant, order.ID)
	require.NoError(t, err)
	assert.Nil(t, mark, "la marca se revierte con la transacción")
}

func TestDeductByOrder_TolerantFuerzaSaldoNegativoEnCentral(t *testing.T) {
	f := newFixture(t)
	steak := f.ingredient("Steak", units.Piece, "2")
	f.stock(steak, f.kitchen, "3")
	dish := f.product("Steak dish", f.kitchen, req(steak, "1", units.Piece))
	order := f.order(line(dish, "5"))

	before := f.total(steak)
	res := f.staleEngine(inventory.PolicyLenient, "10").DeductByOrder(f.ctx, tenant, order.ID)
	require.True(t, res.Success, res.Errors)

	require.Len(t, res.Deductions, 2)
	assert.Equal(t, f.kitchen.ID, res.Deductions[0].SectorID)
	assertDec(t, "3", res.Deductions[0].Quantity)
	assert.False(t, res.Deductions[0].Overdraft)
	assert.Equal(t, f.central.ID, res.Deductions[1].SectorID)
	assertDec(t, "2", res.Deductions[1].Quantity)
	assert.True(t, res.Deductions[1].Overdraft)

	assertDec(t, "0", f.balance(steak, f.kitchen))
	assertDec(t, "-2", f.balance(steak, f.central))
	assert.True(t, before.Sub(sumLines(res.Deductions)).Equal(f.total(steak)))

	exits := f.movements(entity.MovementTypeExit)
	require.Len(t, exits, 2)
	assert.Equal(t, "Order #1 - Steak dish (Central Warehouse - negative balance)", exits[0].Reason)

	// El saldo negativo aparece en el reporte de stock crítico.
	critical, err := f.deductionEngine(inventory.PolicyLenient).GetCriticalStock(f.ctx, tenant)
	require.NoError(t, err)
	require.NotEmpty(t, critical)
	assert.Equal(t, f.central.ID, critical[0].SectorID)
	assertDec(t, "4", critical[0].Deficit)
}

func TestDeductByOrder_SinCentralDesbordaEnSectorDelItem(t *testing.T) {
	f := newFixture(t)
	// Tenant sin almacén central.
	bakery := f.sector("bakery", "Oven", false)
	ing := &entity.Ingredient{ID: "yeast", TenantID: "bakery", Name: "Yeast", Unit: units.Gram, Active: true}
	require.NoError(t, f.repos.Ingredients.Create(f.ctx, ing))
	require.NoError(t, f.repos.Balances.AddQuantity(f.ctx, "bakery", ing.ID, bakery.ID, dec("1")))
	loaf := &entity.Sellable{ID: "loaf", TenantID: "bakery", Kind: entity.SellableKindProduct, Name: "Loaf", SectorID: bakery.ID, Active: true,
		Requirements: []entity.Requirement{{IngredientID: ing.ID, Quantity: dec("3")}}}
	require.NoError(t, f.repos.Sellables.Create(f.ctx, loaf))
	order := &entity.Order{ID: "o-1", TenantID: "bakery", Source: entity.OrderSourcePOS, Status: entity.OrderStatusOpen,
		Items: []entity.OrderItem{{SellableID: loaf.ID, Quantity: dec("1")}}}
	require.NoError(t, f.store.Run(f.ctx, func(r inventory.Repos) error { return r.Orders.Create(f.ctx, order) }))

	reader := f.repos
	reader.Balances = staleBalances{StockBalanceRepository: f.repos.Balances, total: dec("100")}
	engine := inventory.NewDeductionEngine(f.store, reader, nil, inventory.PolicyLenient, nil)

	res := engine.DeductByOrder(f.ctx, "bakery", order.ID)
	require.True(t, res.Success, res.Errors)

	b, err := f.repos.Balances.Get(f.ctx, "bakery", ing.ID, bakery.ID)
	require.NoError(t, err)
	assertDec(t, "-2", b.Quantity)
}

func TestDeductByOrder_PedidoCanceladoNoSeDescuenta(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient("Flour", units.Kilogram, "0")
	f.stock(flour, f.central, "50")
	bread := f.product("Bread", f.kitchen, req(flour, "0.5", units.Kilogram))
	order := f.order(line(bread, "1"))
	require.NoError(t, f.repos.Orders.UpdateStatus(f.ctx, tenant, order.ID, entity.OrderStatusCancelled))

	res := f.deductionEngine(inventory.PolicyStrict).DeductByOrder(f.ctx, tenant, order.ID)
	assert.ErrorIs(t, res.Err, domain.ErrInvalidInput)
	assertDec(t, "50", f.balance(flour, f.central))
}

// ── Doble reserva concurrente ─────────────────────────────────────────────────

func TestDeductByOrder_DobleReservaEstricta(t *testing.T) {
	f := newFixture(t)
	steak := f.ingredient("Steak", units.Piece, "0")
	f.stock(steak, f.central, "10")
	dish := f.product("Steak dish", f.kitchen, req(steak, "1", units.Piece))
	orders := []*entity.Order{f.order(line(dish, "10")), f.order(line(dish, "10"))}
	engine := f.deductionEngine(inventory.PolicyStrict)

	results := make([]dto.DeductionResult, len(orders))
	var wg sync.WaitGroup
	for i, o := range orders {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = engine.DeductByOrder(f.ctx, tenant, id)
		}(i, o.ID)
	}
	wg.Wait()

	successes := 0
	for _, r := range results {
		if r.Success {
			successes++
			continue
		}
		assert.ErrorIs(t, r.Err, domain.ErrInsufficientStock)
		assert.True(t, strings.Contains(strings.Join(r.Errors, " "), "Steak"))
	}
	assert.Equal(t, 1, successes)
	assertDec(t, "0", f.balance(steak, f.central))
	exits := f.movements(entity.MovementTypeExit)
	assertDec(t, "10", sumMovements(exits))
}

func TestDeductByOrder_DobleReservaTolerante(t *testing.T) {
	f := newFixture(t)
	steak := f.ingredient("Steak", units.Piece, "0")
	f.stock(steak, f.central, "10")
	dish := f.product("Steak dish", f.kitchen, req(steak, "1", units.Piece))
	orders := []*entity.Order{f.order(line(dish, "10")), f.order(line(dish, "10"))}
	engine := f.deductionEngine(inventory.PolicyLenient)

	results := make([]dto.DeductionResult, len(orders))
	var wg sync.WaitGroup
	for i, o := range orders {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = engine.DeductByOrder(f.ctx, tenant, id)
		}(i, o.ID)
	}
	wg.Wait()

	successes := 0
	overdraft := decimal.Zero
	deducted := decimal.Zero
	for _, r := range results {
		if !r.Success {
			assert.ErrorIs(t, r.Err, domain.ErrInsufficientStock)
			continue
		}
		successes++
		for _, l := range r.Deductions {
			deducted = deducted.Add(l.Quantity)
			if l.Overdraft {
				overdraft = overdraft.Add(l.Quantity)
			}
		}
	}
	require.GreaterOrEqual(t, successes, 1)

	// Lo descontado nunca supera lo disponible más el desborde documentado.
	assert.True(t, deducted.LessThanOrEqual(dec("10").Add(overdraft)))
	// Ningún movimiento perdido ni duplicado.
	exits := f.movements(entity.MovementTypeExit)
	assert.True(t, sumMovements(exits).Equal(deducted))
	assert.True(t, dec("10").Sub(deducted).Equal(f.total(steak)))
	assertDec(t, decimal.NewFromInt(int64(10*successes)).String(), deducted)
}

// ── RestoreStockByOrder ───────────────────────────────────────────────────────

func TestRestoreStockByOrder_DevuelveAlOrigenExacto(t *testing.T) {
	f := newFixture(t)
	lemon := f.ingredient("Lemon", units.Piece, "0")
	f.stock(lemon, f.bar, "2")
	f.stock(lemon, f.central, "10")
	drink := f.product("Lemonade", f.bar, req(lemon, "1", units.Piece))
	order := f.order(line(drink, "5"))
	engine := f.deductionEngine(inventory.PolicyStrict)

	require.True(t, engine.DeductByOrder(f.ctx, tenant, order.ID).Success)
	assertDec(t, "0", f.balance(lemon, f.bar))
	assertDec(t, "7", f.balance(lemon, f.central))

	require.NoError(t, engine.RestoreStockByOrder(f.ctx, tenant, order.ID))
	assertDec(t, "2", f.balance(lemon, f.bar))
	assertDec(t, "10", f.balance(lemon, f.central))

	entries := f.movements(entity.MovementTypeEntry)
	require.Len(t, entries, 2)
	for _, m := range entries {
		assert.Equal(t, "Reversal of order #1", m.Reason)
		assert.Equal(t, order.ID, m.OrderID)
	}

	// Segunda reversión: no hace nada.
	require.NoError(t, engine.RestoreStockByOrder(f.ctx, tenant, order.ID))
	assertDec(t, "10", f.balance(lemon, f.central))
	assert.Len(t, f.movements(entity.MovementTypeEntry), 2)

	// Y el pedido no puede volver a descontarse.
	again := engine.DeductByOrder(f.ctx, tenant, order.ID)
	assert.ErrorIs(t, again.Err, domain.ErrAlreadyProcessed)
}

func TestRestoreStockByOrder_SinDescuentoNoHaceNada(t *testing.T) {
	f := newFixture(t)
	lemon := f.ingredient("Lemon", units.Piece, "0")
	f.stock(lemon, f.bar, "2")
	drink := f.product("Lemonade", f.bar, req(lemon, "1", units.Piece))
	order := f.order(line(drink, "1"))

	require.NoError(t, f.deductionEngine(inventory.PolicyStrict).RestoreStockByOrder(f.ctx, tenant, order.ID))
	assertDec(t, "2", f.balance(lemon, f.bar))
	assert.Empty(t, f.movements(""))
}

func TestRestoreStockByOrder_SectorEliminadoVuelveAlCentral(t *testing.T) {
	f := newFixture(t)
	lemon := f.ingredient("Lemon", units.Piece, "0")
	f.stock(lemon, f.bar, "5")
	drink := f.product("Lemonade", f.bar, req(lemon, "1", units.Piece))
	order := f.order(line(drink, "5"))
	engine := f.deductionEngine(inventory.PolicyStrict)
	require.True(t, engine.DeductByOrder(f.ctx, tenant, order.ID).Success)

	require.NoError(t, f.store.Run(f.ctx, func(r inventory.Repos) error {
		if err := r.Balances.Delete(f.ctx, tenant, lemon.ID, f.bar.ID); err != nil {
			return err
		}
		return r.Sectors.Delete(f.ctx, tenant, f.bar.ID)
	}))

	require.NoError(t, engine.RestoreStockByOrder(f.ctx, tenant, order.ID))
	assertDec(t, "5", f.balance(lemon, f.central))
}

func TestRestoreStockByOrder_PedidoInexistente(t *testing.T) {
	f := newFixture(t)
	err := f.deductionEngine(inventory.PolicyStrict).RestoreStockByOrder(f.ctx, tenant, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "order not found", inventory.Message(err))
}

// ── GetCriticalStock ──────────────────────────────────────────────────────────

func TestGetCriticalStock_OrdenadoPorDeficitYSoloActivos(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient("Flour", units.Kilogram, "5")
	sugar := f.ingredient("Sugar", units.Kilogram, "10")
	salt := f.ingredient("Salt", units.Kilogram, "1")
	old := f.ingredient("Old spice", units.Gram, "100")
	f.stock(flour, f.central, "4")
	f.stock(sugar, f.kitchen, "1")
	f.stock(salt, f.central, "3")
	f.stock(old, f.central, "1")
	require.NoError(t, f.repos.Ingredients.Deactivate(f.ctx, tenant, old.ID))

	items, err := f.deductionEngine(inventory.PolicyStrict).GetCriticalStock(f.ctx, tenant)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "Sugar", items[0].IngredientName)
	assert.Equal(t, "Kitchen", items[0].SectorName)
	assertDec(t, "9", items[0].Deficit)
	assert.Equal(t, "Flour", items[1].IngredientName)
	assertDec(t, "1", items[1].Deficit)
	assertDec(t, "5", items[1].MinStock)
}

func TestParsePolicy(t *testing.T) {
	p, err := inventory.ParsePolicy("LENIENT")
	require.NoError(t, err)
	assert.Equal(t, inventory.PolicyLenient, p)

	p, err = inventory.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, inventory.PolicyStrict, p)

	_, err = inventory.ParsePolicy("maybe")
	assert.Error(t, err)
}
