package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro de stock.
type MovementType string

const (
	MovementTypeEntry      MovementType = "ENTRY"      // compra o carga inicial: solo ToSectorID
	MovementTypeExit       MovementType = "EXIT"       // consumo por pedido: solo FromSectorID
	MovementTypeTransfer   MovementType = "TRANSFER"   // entre sectores: ambos
	MovementTypeAdjustment MovementType = "ADJUSTMENT" // inventario: uno según el signo
)

// Valid indica si el tipo es uno de los conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeEntry, MovementTypeExit, MovementTypeTransfer, MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement asiento inmutable del libro de stock. Nunca se actualiza ni se borra.
// Quantity es siempre la magnitud positiva; la dirección la dan Type y los sectores informados.
type StockMovement struct {
	ID           string
	TenantID     string
	IngredientID string
	FromSectorID string // vacío = sin origen
	ToSectorID   string // vacío = sin destino
	Quantity     decimal.Decimal
	Type         MovementType
	Reason       string
	OrderID      string // vacío si no proviene de un pedido
	CreatedAt    time.Time
	CreatedBy    string
}
