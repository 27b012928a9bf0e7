package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de pedido o de validación.
type OrderItemRequest struct {
	SellableID string          `json:"sellable_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ValidateStockRequest body para POST /api/stock/validate.
type ValidateStockRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// ValidateStockResponse lista vacía = hay stock suficiente.
type ValidateStockResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Source string             `json:"source"` // POS | SALON
	Items  []OrderItemRequest `json:"items"`
}

// CompleteAppointmentRequest body para POST /api/appointments/complete.
type CompleteAppointmentRequest struct {
	ServiceID string `json:"service_id"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID         string             `json:"id"`
	Number     int64              `json:"number"`
	Source     string             `json:"source"`
	Status     string             `json:"status"`
	Items      []OrderItemRequest `json:"items"`
	Deductions []DeductionLine    `json:"deductions,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// UpdateOrderStatusRequest body para PUT /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
