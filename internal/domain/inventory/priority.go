package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/domain/entity"
)

// Epsilon remanente por debajo del cual se considera que no queda nada por descontar.
var Epsilon = decimal.RequireFromString("0.0001")

// SortForDeduction ordena los saldos candidatos para un descuento:
//  1. el sector del ítem vendido,
//  2. el sector central,
//  3. el resto por cantidad disponible descendente.
//
// Devuelve una copia; los saldos no positivos se descartan.
func SortForDeduction(balances []*entity.StockBalance, sellableSectorID string) []*entity.StockBalance {
	out := make([]*entity.StockBalance, 0, len(balances))
	for _, b := range balances {
		if b.Quantity.GreaterThan(decimal.Zero) {
			out = append(out, b)
		}
	}
	rank := func(b *entity.StockBalance) int {
		switch {
		case sellableSectorID != "" && b.SectorID == sellableSectorID:
			return 0
		case b.SectorIsCentral:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.GreaterThan(out[j].Quantity)
		}
		return out[i].SectorID < out[j].SectorID
	})
	return out
}

// Exhausted indica si el remanente ya es despreciable.
func Exhausted(remaining decimal.Decimal) bool {
	return remaining.LessThanOrEqual(Epsilon)
}
