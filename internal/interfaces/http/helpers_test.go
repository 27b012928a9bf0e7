package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/application/orders"
	"github.com/jhoicas/erp-stock/internal/application/usecase"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/units"
	"github.com/jhoicas/erp-stock/internal/infrastructure/memory"
	"github.com/jhoicas/erp-stock/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/erp-stock/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/erp-stock/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "erp-stock-test"
	testExpMin    = 60
)

// env API completa sobre el store en memoria con un tenant sembrado:
// almacén central, cocina, harina (kg) y una pizza que consume 250 g de harina preparada en cocina.
type env struct {
	t       *testing.T
	app     *fiber.App
	store   *memory.Store
	central *entity.Sector
	kitchen *entity.Sector
	flour   *entity.Ingredient
	pizza   *entity.Sellable
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()

	movements := inventory.NewMovementEngine(store, repos, nil, nil)
	deductions := inventory.NewDeductionEngine(store, repos, nil, inventory.PolicyStrict, nil)
	orderUC := orders.NewOrderUseCase(store, repos, deductions, nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Movements:    movements,
		Deductions:   deductions,
		Critical:     inventory.NewCriticalStockReport(deductions, pdf.NewCriticalStockPDF()),
		SectorUC:     usecase.NewSectorUseCase(store, repos, nil, nil),
		IngredientUC: usecase.NewIngredientUseCase(repos),
		SellableUC:   usecase.NewSellableUseCase(store),
		OrderUC:      orderUC,
		JWTSecret:    testJWTSecret,
	})

	e := &env{t: t, app: app, store: store}
	ctx := context.Background()
	now := time.Now()

	e.central = &entity.Sector{ID: uuid.New().String(), TenantID: testTenantID, Name: "Central Warehouse", IsCentral: true, CreatedAt: now}
	e.kitchen = &entity.Sector{ID: uuid.New().String(), TenantID: testTenantID, Name: "Kitchen", CreatedAt: now}
	require.NoError(t, repos.Sectors.Create(ctx, e.central))
	require.NoError(t, repos.Sectors.Create(ctx, e.kitchen))

	e.flour = &entity.Ingredient{
		ID: uuid.New().String(), TenantID: testTenantID, Name: "Flour", Unit: units.Kilogram,
		MinStock: decimal.NewFromInt(2), Active: true, CreatedAt: now,
	}
	require.NoError(t, repos.Ingredients.Create(ctx, e.flour))

	e.pizza = &entity.Sellable{
		ID: uuid.New().String(), TenantID: testTenantID, Kind: entity.SellableKindProduct,
		Name: "Pizza", SectorID: e.kitchen.ID, Active: true,
		Requirements: []entity.Requirement{{IngredientID: e.flour.ID, Quantity: decimal.NewFromInt(250), Unit: units.Gram}},
	}
	require.NoError(t, repos.Sellables.Create(ctx, e.pizza))
	return e
}

func (e *env) stock(sector *entity.Sector, qty string) {
	e.t.Helper()
	require.NoError(e.t, e.store.Repos().Balances.AddQuantity(context.Background(), testTenantID, e.flour.ID, sector.ID, decimal.RequireFromString(qty)))
}

func (e *env) balance(sector *entity.Sector) decimal.Decimal {
	e.t.Helper()
	b, err := e.store.Repos().Balances.Get(context.Background(), testTenantID, e.flour.ID, sector.ID)
	require.NoError(e.t, err)
	return b.Quantity
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, Role: role}, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// call lanza la petición con el rol indicado ("" = sin header) y decodifica el JSON en out si no es nil.
func (e *env) call(method, path, role string, body any, out any) *http.Response {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", token(e.t, role))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}
