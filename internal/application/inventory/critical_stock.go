package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/erp-stock/internal/application/dto"
)

// CriticalStockReport arma el reporte de stock crítico para descarga.
type CriticalStockReport struct {
	engine   *DeductionEngine
	renderer CriticalStockRenderer
	now      func() time.Time
}

// NewCriticalStockReport construye el caso de uso del reporte.
func NewCriticalStockReport(engine *DeductionEngine, renderer CriticalStockRenderer) *CriticalStockReport {
	return &CriticalStockReport{engine: engine, renderer: renderer, now: time.Now}
}

// PDF genera el reporte del tenant. Sin ítems críticos el PDF se genera igual (indica que no hay alertas).
func (uc *CriticalStockReport) PDF(ctx context.Context, tenantID string) ([]byte, error) {
	if uc.renderer == nil {
		return nil, errors.New("critical stock: renderer no configurado")
	}
	items, err := uc.engine.GetCriticalStock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.Render(tenantID, uc.now(), items)
}

// Items devuelve los mismos datos que el PDF, útil para el endpoint JSON.
func (uc *CriticalStockReport) Items(ctx context.Context, tenantID string) ([]dto.CriticalStockItem, error) {
	return uc.engine.GetCriticalStock(ctx, tenantID)
}
