package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/domain/units"
)

// Ingredient insumo consumible con stock por sector.
// Nunca se borra físicamente: se desactiva para que recetas y movimientos históricos sigan siendo válidos.
type Ingredient struct {
	ID         string
	TenantID   string
	Name       string
	Unit       units.Unit      // unidad canónica de almacenamiento
	CostPrice  decimal.Decimal // costo por unidad canónica (promedio ponderado)
	MinStock   decimal.Decimal
	CategoryID string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
