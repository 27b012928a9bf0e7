package http_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-stock/internal/application/dto"
)

func TestSellables_CrearYVender(t *testing.T) {
	e := newEnv(t)
	e.stock(e.central, "1")

	var created dto.SellableResponse
	resp := e.call(http.MethodPost, "/api/sellables", "stock", dto.CreateSellableRequest{
		Name:         "Focaccia",
		SectorID:     e.kitchen.ID,
		Requirements: []dto.RequirementRequest{{IngredientID: e.flour.ID, Quantity: decimal.NewFromInt(400), Unit: "g"}},
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Focaccia", created.Name)

	var order dto.OrderResponse
	resp = e.call(http.MethodPost, "/api/orders", "cashier", dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{SellableID: created.ID, Quantity: decimal.NewFromInt(2)}},
	}, &order)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, e.balance(e.central).Equal(decimal.RequireFromString("0.2")))
}

func TestSellables_InsumoAjeno_404(t *testing.T) {
	e := newEnv(t)

	var out dto.ErrorResponse
	resp := e.call(http.MethodPost, "/api/sellables", "admin", dto.CreateSellableRequest{
		Name:         "Ghost",
		Requirements: []dto.RequirementRequest{{IngredientID: "00000000-0000-0000-0000-00000000beef", Quantity: decimal.NewFromInt(1)}},
	}, &out)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", out.Code)
}

func TestSellables_CajeroSinPermiso(t *testing.T) {
	e := newEnv(t)
	resp := e.call(http.MethodPost, "/api/sellables", "cashier", dto.CreateSellableRequest{Name: "X"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
