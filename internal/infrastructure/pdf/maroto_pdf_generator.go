// Package pdf genera la versión imprimible del reporte semanal.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda + título  │  Semana desde / hasta           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TRANSACCIONES: Tipo | Estado | Cantidad | Total            │
//	│  LOGÍSTICA: Fecha | Ventas | Compras | Unid. salida/entrada │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ROTACIÓN: temporada y rebajados                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  AJUSTES: una línea por regla disparada                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"os"
	"strconv"

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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/application/reporting"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator genera el reporte semanal con Maroto v2.
type MarotoPDFGenerator struct {
	storeName string
}

// NewMarotoPDFGenerator construye el generador; storeName encabeza cada reporte.
func NewMarotoPDFGenerator(storeName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{storeName: storeName}
}

// GenerateWeeklyReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateWeeklyReportPDF(r *reporting.WeeklyReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte semanal", true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.storeName, r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionRow("RESUMEN TRANSACCIONAL"))
	m.AddRows(tableHeaderRow([]string{"Tipo", "Estado", "Cantidad", "Total"}, []int{3, 3, 3, 3}))
	m.AddRows(transactionRows(r)...)

	m.AddRows(sectionRow("LOGÍSTICA DIARIA"))
	m.AddRows(tableHeaderRow([]string{"Fecha", "Ventas", "Compras", "Unid. salida", "Unid. entrada"}, []int{4, 2, 2, 2, 2}))
	m.AddRows(logisticsRows(r)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionRow("PRODUCTOS DE TEMPORADA"))
	m.AddRows(productRows(r.Seasonal)...)
	m.AddRows(sectionRow("PRODUCTOS REBAJADOS"))
	m.AddRows(productRows(r.Discounted)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionRow("AJUSTES DE CIERRE"))
	m.AddRows(adjustmentRows(r)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// Save genera el PDF y lo escribe en path.
func (g *MarotoPDFGenerator) Save(path string, r *reporting.WeeklyReport) error {
	data, err := g.GenerateWeeklyReportPDF(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("pdf: guardar %s: %w", path, err)
	}
	return nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre de la tienda (izq) y semana (der).
func headerRow(storeName string, r *reporting.WeeklyReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(storeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Reporte semanal de inventario", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("SEMANA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(entity.FormatDate(r.From)+" al "+entity.FormatDate(r.To), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
		),
	)
}

func sectionRow(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 3,
		}),
	))
}

func tableHeaderRow(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, label := range labels {
		cols = append(cols, col.New(sizes[i]).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Left, Top: 1, Left: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func transactionRows(r *reporting.WeeklyReport) []core.Row {
	var rows []core.Row
	for _, t := range r.Transactions {
		rows = append(rows, row.New(5).Add(
			cell(t.Type, 3, align.Left),
			cell("todos", 3, align.Left),
			cell(strconv.Itoa(t.Count), 3, align.Left),
			cell(money(t.Total), 3, align.Left),
		))
		for _, st := range t.ByStatus {
			rows = append(rows, row.New(5).Add(
				cell("", 3, align.Left),
				cell(st.Status, 3, align.Left),
				cell(strconv.Itoa(st.Count), 3, align.Left),
				cell(money(st.Total), 3, align.Left),
			))
		}
	}
	if r.Untracked > 0 {
		rows = append(rows, row.New(5).Add(col.New(12).Add(text.New(
			fmt.Sprintf("%d transacciones sin movimiento asociado", r.Untracked),
			props.Text{Size: 7, Color: colorGray, Top: 1},
		))))
	}
	return rows
}

func logisticsRows(r *reporting.WeeklyReport) []core.Row {
	rows := make([]core.Row, 0, len(r.Logistics))
	for _, d := range r.Logistics {
		rows = append(rows, row.New(5).Add(
			cell(entity.FormatDate(d.Date), 4, align.Left),
			cell(strconv.Itoa(d.Sales), 2, align.Left),
			cell(strconv.Itoa(d.Purchases), 2, align.Left),
			cell(strconv.Itoa(d.UnitsOut), 2, align.Left),
			cell(strconv.Itoa(d.UnitsIn), 2, align.Left),
		))
	}
	return rows
}

func productRows(lines []reporting.ProductLine) []core.Row {
	if len(lines) == 0 {
		return []core.Row{row.New(5).Add(col.New(12).Add(text.New("Ninguno", props.Text{Size: 8, Color: colorGray, Top: 1})))}
	}
	rows := []core.Row{tableHeaderRow([]string{"Producto", "Categoría", "Precio", "Rebaja", "Efectivo", "Stock"}, []int{4, 2, 2, 1, 2, 1})}
	for _, p := range lines {
		rows = append(rows, row.New(5).Add(
			cell(p.Name, 4, align.Left),
			cell(p.Category, 2, align.Left),
			cell(money(p.Price), 2, align.Right),
			cell(p.Discount.Mul(decimal.NewFromInt(100)).StringFixed(0)+"%", 1, align.Right),
			cell(money(p.EffectivePrice), 2, align.Right),
			cell(strconv.Itoa(p.Stock), 1, align.Right),
		))
	}
	return rows
}

func adjustmentRows(r *reporting.WeeklyReport) []core.Row {
	if len(r.Adjustments) == 0 {
		return []core.Row{row.New(5).Add(col.New(12).Add(text.New("Sin ajustes", props.Text{Size: 8, Color: colorGray, Top: 1})))}
	}
	rows := make([]core.Row, 0, len(r.Adjustments))
	for _, n := range r.Adjustments {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(n.String(), props.Text{Size: 7.5, Top: 1, Left: 1}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
