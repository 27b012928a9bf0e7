package entity

import "time"

// OrderDeduction marca explícita de que el stock de un pedido ya se descontó.
// Reemplaza la búsqueda por texto en el motivo de los movimientos.
type OrderDeduction struct {
	TenantID    string
	OrderID     string
	OrderNumber int64
	DeductedAt  time.Time
	RestoredAt  *time.Time
}
