package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pedido relevantes para el stock.
const (
	OrderStatusOpen      = "OPEN"
	OrderStatusPaid      = "PAID"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// Orígenes de pedido.
const (
	OrderSourcePOS   = "POS"
	OrderSourceSalon = "SALON"
)

// Order pedido (restaurante) o cita realizada (salón) visto desde el motor de stock.
type Order struct {
	ID        string
	TenantID  string
	Number    int64 // número visible, secuencial por tenant
	Source    string
	Status    string
	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem línea vendida: un ítem vendible y su cantidad.
type OrderItem struct {
	SellableID string
	Sellable   *Sellable
	Quantity   decimal.Decimal
}
