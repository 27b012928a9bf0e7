package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/units"
)

func pizzas(e *env, qty int64) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{Items: []dto.OrderItemRequest{{SellableID: e.pizza.ID, Quantity: decimal.NewFromInt(qty)}}}
}

func TestOrders_CrearDescuenta(t *testing.T) {
	e := newEnv(t)
	e.stock(e.kitchen, "1")

	var out dto.OrderResponse
	resp := e.call(http.MethodPost, "/api/orders", "cashier", pizzas(e, 2), &out)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(1), out.Number)
	assert.Equal(t, "POS", out.Source)
	require.Len(t, out.Deductions, 1)
	assert.Equal(t, e.kitchen.ID, out.Deductions[0].SectorID)
	assert.True(t, e.balance(e.kitchen).Equal(decimal.RequireFromString("0.5")))

	var got dto.OrderResponse
	resp = e.call(http.MethodGet, "/api/orders/"+out.ID, "cashier", nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, out.ID, got.ID)
}

func TestOrders_StockInsuficiente_400(t *testing.T) {
	e := newEnv(t)
	e.stock(e.kitchen, "0.1")

	var out dto.ErrorResponse
	resp := e.call(http.MethodPost, "/api/orders", "cashier", pizzas(e, 2), &out)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", out.Code)
	assert.Equal(t, "insufficient stock of Flour: required 0.500, available 0.100", out.Message)
	assert.True(t, e.balance(e.kitchen).Equal(decimal.RequireFromString("0.1")))
}

func TestOrders_DescontarDosVeces_400(t *testing.T) {
	e := newEnv(t)
	e.stock(e.kitchen, "1")

	var out dto.OrderResponse
	e.call(http.MethodPost, "/api/orders", "cashier", pizzas(e, 1), &out)

	var res dto.DeductionResult
	resp := e.call(http.MethodPost, "/api/orders/"+out.ID+"/deduct", "stock", nil, &res)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"deduction already performed for this order"}, res.Errors)
	assert.True(t, e.balance(e.kitchen).Equal(decimal.RequireFromString("0.75")))
}

func TestOrders_CancelarRestaura(t *testing.T) {
	e := newEnv(t)
	e.stock(e.kitchen, "1")

	var out dto.OrderResponse
	e.call(http.MethodPost, "/api/orders", "cashier", pizzas(e, 2), &out)
	require.True(t, e.balance(e.kitchen).Equal(decimal.RequireFromString("0.5")))

	resp := e.call(http.MethodPost, "/api/orders/"+out.ID+"/cancel", "cashier", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, e.balance(e.kitchen).Equal(decimal.NewFromInt(1)))

	var got dto.OrderResponse
	e.call(http.MethodGet, "/api/orders/"+out.ID, "cashier", nil, &got)
	assert.Equal(t, "CANCELLED", got.Status)

	// Un cancelado no vuelve a abrirse.
	var errOut dto.ErrorResponse
	resp = e.call(http.MethodPut, "/api/orders/"+out.ID+"/status", "cashier", dto.UpdateOrderStatusRequest{Status: "open"}, &errOut)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errOut.Code)
}

func TestOrders_EstadoInvalido_400(t *testing.T) {
	e := newEnv(t)
	e.stock(e.kitchen, "1")

	var out dto.OrderResponse
	e.call(http.MethodPost, "/api/orders", "cashier", pizzas(e, 1), &out)

	resp := e.call(http.MethodPut, "/api/orders/"+out.ID+"/status", "cashier", dto.UpdateOrderStatusRequest{Status: "SHIPPED"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOrders_Inexistente_404(t *testing.T) {
	e := newEnv(t)
	id := uuid.New().String()

	resp := e.call(http.MethodGet, "/api/orders/"+id, "cashier", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = e.call(http.MethodPost, "/api/orders/"+id+"/restore", "stock", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAppointments_CompletarDescuentaServicio(t *testing.T) {
	e := newEnv(t)
	e.stock(e.central, "1")

	svc := &entity.Sellable{
		ID: uuid.New().String(), TenantID: testTenantID, Kind: entity.SellableKindService,
		Name: "Bread class", Active: true,
		Requirements: []entity.Requirement{{IngredientID: e.flour.ID, Quantity: decimal.NewFromInt(100), Unit: units.Gram}},
	}
	require.NoError(t, e.store.Repos().Sellables.Create(context.Background(), svc))

	var out dto.OrderResponse
	resp := e.call(http.MethodPost, "/api/appointments/complete", "cashier", dto.CompleteAppointmentRequest{ServiceID: svc.ID}, &out)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "SALON", out.Source)
	assert.Equal(t, "COMPLETED", out.Status)
	assert.True(t, e.balance(e.central).Equal(decimal.RequireFromString("0.9")))

	// Un producto no es un servicio.
	resp = e.call(http.MethodPost, "/api/appointments/complete", "cashier", dto.CompleteAppointmentRequest{ServiceID: e.pizza.ID}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
