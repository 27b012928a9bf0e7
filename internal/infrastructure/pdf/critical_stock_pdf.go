// Package pdf genera el reporte de stock crítico con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + tenant     │  fecha de generación          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: insumos afectados / sectores en negativo          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Insumo | Sector | Actual | Mínimo | Déficit         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/inventory"
)

var _ inventory.CriticalStockRenderer = (*CriticalStockPDF)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// CriticalStockPDF implementa inventory.CriticalStockRenderer usando Maroto v2.
type CriticalStockPDF struct{}

// NewCriticalStockPDF construye el generador.
func NewCriticalStockPDF() *CriticalStockPDF { return &CriticalStockPDF{} }

// Render genera el PDF y devuelve sus bytes. Una lista vacía produce un documento con el aviso correspondiente.
func (g *CriticalStockPDF) Render(tenantID string, generatedAt time.Time, items []dto.CriticalStockItem) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Critical stock report", true).
		WithAuthor(tenantID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(tenantID, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(items))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if len(items) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("All ingredients are above their minimum stock.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	} else {
		m.AddRows(tableHeaderRow())
		m.AddRows(tableDetailRows(items)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(tenantID string, generatedAt time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("CRITICAL STOCK REPORT", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Tenant: "+tenantID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generated", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

// summaryRow: cantidad de insumos distintos y de saldos negativos.
func summaryRow(items []dto.CriticalStockItem) core.Row {
	ingredients := make(map[string]struct{}, len(items))
	negatives := 0
	for _, it := range items {
		ingredients[it.IngredientID] = struct{}{}
		if it.CurrentStock.IsNegative() {
			negatives++
		}
	}
	return row.New(10).Add(
		col.New(6).Add(text.New(fmt.Sprintf("Ingredients below minimum: %d", len(ingredients)), props.Text{
			Size: 9, Top: 3,
		})),
		col.New(6).Add(text.New(fmt.Sprintf("Negative balances: %d", negatives), props.Text{
			Size: 9, Top: 3, Align: align.Right, Color: colorDanger,
		})),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ingredient", 4, align.Left),
		h("Sector", 3, align.Left),
		h("Current", 2, align.Right),
		h("Minimum", 1, align.Right),
		h("Deficit", 2, align.Right),
	)
}

// tableDetailRows: una fila por (insumo, sector); los saldos negativos en rojo.
func tableDetailRows(items []dto.CriticalStockItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		current := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if it.CurrentStock.IsNegative() {
			current.Color = colorDanger
			current.Style = fontstyle.Bold
		}
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(it.IngredientName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(it.SectorName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(withUnit(it.CurrentStock.StringFixed(3), it.Unit), current)),
			col.New(1).Add(text.New(it.MinStock.StringFixed(3), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(withUnit(it.Deficit.StringFixed(3), it.Unit), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1, Style: fontstyle.Bold,
			})),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func withUnit(qty, unit string) string {
	if unit == "" {
		return qty
	}
	return qty + " " + unit
}
