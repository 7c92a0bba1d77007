// Package pdf implementa el render del reporte de movimientos de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + filtros aplicados │ Fecha de generación   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Repuesto | Tipo | Cant | Antes | Después    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PIE: total de asientos del corte                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
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

	"github.com/jhoicas/Repuestos-api/internal/application/report"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorGreen   = &props.Color{Red: 20, Green: 110, Blue: 50}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ report.MovementsPDFGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa report.MovementsPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateMovementsPDF genera el PDF del corte de movimientos y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateMovementsPDF(
	_ context.Context,
	rows []report.MovementRow,
	filter report.ReportFilter,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de movimientos de inventario", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(filter, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(rows) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(len(rows)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + filtros (izq) y fecha de generación (der).
func headerRow(filter report.ReportFilter, generatedAt time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("MOVIMIENTOS DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(filterLegend(filter), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado:", props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(generatedAt.Format("02/01/2006 15:04"), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

// filterLegend describe el corte aplicado.
func filterLegend(filter report.ReportFilter) string {
	legend := "Corte: "
	switch {
	case filter.From != nil && filter.To != nil:
		legend += filter.From.Format("02/01/2006") + " — " + filter.To.Format("02/01/2006")
	case filter.From != nil:
		legend += "desde " + filter.From.Format("02/01/2006")
	case filter.To != nil:
		legend += "hasta " + filter.To.Format("02/01/2006")
	default:
		legend += "todo el libro"
	}
	if filter.Type != "" {
		legend += "   |   Tipo: " + filter.Type
	}
	return legend
}

// tableHeaderRow: cabecera de la tabla de asientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Repuesto", 4, align.Left),
		h("Tipo", 1, align.Center),
		h("Cant.", 2, align.Right),
		h("Antes", 1, align.Right),
		h("Después", 2, align.Right),
	)
}

// tableRows: una fila por asiento; las salidas en rojo, las entradas en verde.
func tableRows(rows []report.MovementRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		qtyColor := colorGreen
		if r.Quantity.IsNegative() {
			qtyColor = colorRed
		}
		partLabel := r.PartNumber
		if r.PartName != "" {
			partLabel += " — " + r.PartName
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(
				r.CreatedAt.Format("02/01/2006 15:04"),
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(4).Add(text.New(
				partLabel,
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				typeLabel(r.Type),
				props.Text{Size: 7.5, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				r.Quantity.String(),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1, Color: qtyColor, Style: fontstyle.Bold},
			)),
			col.New(1).Add(text.New(
				r.StockBefore.String(),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1, Color: colorGray},
			)),
			col.New(2).Add(text.New(
				r.StockAfter.String(),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func typeLabel(t string) string {
	switch t {
	case entity.MovementTypeIN:
		return "ENT"
	case entity.MovementTypeOUT:
		return "SAL"
	case entity.MovementTypeADJUSTMENT:
		return "AJU"
	}
	return t
}

// footerRow: total de asientos incluidos en el corte.
func footerRow(total int) core.Row {
	return row.New(8).Add(
		col.New(12).Add(text.New(
			fmt.Sprintf("Total de asientos en el corte: %d", total),
			props.Text{Size: 8, Align: align.Right, Top: 2, Color: colorGray},
		)),
	)
}
