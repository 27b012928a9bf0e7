package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance cantidad de un insumo en un sector (agregado, una fila por par insumo+sector).
// Quantity puede quedar negativa como señal de sobregiro.
type StockBalance struct {
	TenantID     string
	IngredientID string
	SectorID     string
	Quantity     decimal.Decimal
	UpdatedAt    time.Time

	// Datos del sector, rellenados por las consultas que hacen JOIN.
	SectorName      string
	SectorIsCentral bool
}
