// Package excel exporta el reporte semanal a XLSX con una hoja por sección.
package excel

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/abarroteria/internal/application/reporting"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// Nombres de las hojas del libro.
const (
	SheetTransactions = "Transacciones"
	SheetLogistics    = "Logística"
	SheetRotation     = "Rotación"
	SheetAdjustments  = "Ajustes"
)

// WeeklyReportWriter escribe el reporte semanal en formato XLSX.
type WeeklyReportWriter struct{}

// NewWeeklyReportWriter construye el exportador.
func NewWeeklyReportWriter() *WeeklyReportWriter { return &WeeklyReportWriter{} }

// Bytes devuelve el libro completo en memoria.
func (w *WeeklyReportWriter) Bytes(r *reporting.WeeklyReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := w.Write(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save escribe el libro en path.
func (w *WeeklyReportWriter) Save(path string, r *reporting.WeeklyReport) error {
	data, err := w.Bytes(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("excel: guardar %s: %w", path, err)
	}
	return nil
}

// Write arma el libro y lo escribe en out.
func (w *WeeklyReportWriter) Write(out io.Writer, r *reporting.WeeklyReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// La hoja por defecto pasa a ser la de transacciones.
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetTransactions); err != nil {
		return fmt.Errorf("excel: hoja inicial: %w", err)
	}
	for _, name := range []string{SheetLogistics, SheetRotation, SheetAdjustments} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("excel: crear hoja %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("excel: estilo: %w", err)
	}

	if err := transactionsSheet(f, bold, r); err != nil {
		return err
	}
	if err := logisticsSheet(f, bold, r); err != nil {
		return err
	}
	if err := rotationSheet(f, bold, r); err != nil {
		return err
	}
	if err := adjustmentsSheet(f, bold, r); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("excel: escribir libro: %w", err)
	}
	return nil
}

// sheet escribe filas consecutivas a partir de la fila 1; la primera es el encabezado.
type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func (s *sheet) add(values ...interface{}) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return fmt.Errorf("excel: celda %s fila %d: %w", s.name, s.row, err)
	}
	if err := s.f.SetSheetRow(s.name, cell, &values); err != nil {
		return fmt.Errorf("excel: fila %d de %s: %w", s.row, s.name, err)
	}
	return nil
}

func (s *sheet) header(style int, values ...interface{}) error {
	if err := s.add(values...); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, s.row)
	last, _ := excelize.CoordinatesToCellName(len(values), s.row)
	return s.f.SetCellStyle(s.name, first, last, style)
}

func transactionsSheet(f *excelize.File, bold int, r *reporting.WeeklyReport) error {
	s := &sheet{f: f, name: SheetTransactions}
	if err := s.add(fmt.Sprintf("Semana %s al %s", entity.FormatDate(r.From), entity.FormatDate(r.To))); err != nil {
		return err
	}
	s.row++
	if err := s.header(bold, "Tipo", "Estado", "Cantidad", "Total"); err != nil {
		return err
	}
	for _, t := range r.Transactions {
		if err := s.add(t.Type, "todos", t.Count, t.Total.InexactFloat64()); err != nil {
			return err
		}
		for _, st := range t.ByStatus {
			if err := s.add(t.Type, st.Status, st.Count, st.Total.InexactFloat64()); err != nil {
				return err
			}
		}
	}
	if r.Untracked > 0 {
		return s.add("sin movimiento", "", r.Untracked, "")
	}
	return nil
}

func logisticsSheet(f *excelize.File, bold int, r *reporting.WeeklyReport) error {
	s := &sheet{f: f, name: SheetLogistics}
	if err := s.header(bold, "Fecha", "Ventas", "Compras", "Unidades salida", "Unidades entrada"); err != nil {
		return err
	}
	for _, d := range r.Logistics {
		if err := s.add(entity.FormatDate(d.Date), d.Sales, d.Purchases, d.UnitsOut, d.UnitsIn); err != nil {
			return err
		}
	}
	return nil
}

func rotationSheet(f *excelize.File, bold int, r *reporting.WeeklyReport) error {
	s := &sheet{f: f, name: SheetRotation}
	if err := s.header(bold, "Lista", "ID", "Producto", "Categoría", "Precio", "Rebaja", "Precio efectivo", "Stock", "Vence"); err != nil {
		return err
	}
	write := func(list string, lines []reporting.ProductLine) error {
		for _, p := range lines {
			expires := ""
			if p.ExpirationDate != nil {
				expires = entity.FormatDate(*p.ExpirationDate)
			}
			if err := s.add(list, p.ID, p.Name, p.Category, p.Price.InexactFloat64(), p.Discount.InexactFloat64(),
				p.EffectivePrice.InexactFloat64(), p.Stock, expires); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write("temporada", r.Seasonal); err != nil {
		return err
	}
	return write("rebajado", r.Discounted)
}

func adjustmentsSheet(f *excelize.File, bold int, r *reporting.WeeklyReport) error {
	s := &sheet{f: f, name: SheetAdjustments}
	if err := s.header(bold, "ID", "Producto", "Regla", "Detalle"); err != nil {
		return err
	}
	for _, n := range r.Adjustments {
		if err := s.add(n.ProductID, n.ProductName, n.Rule, n.Message); err != nil {
			return err
		}
	}
	return nil
}
