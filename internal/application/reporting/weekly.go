// Package reporting arma el reporte semanal (transaccional, logístico y de rotación) a partir de los almacenes.
// No imprime; los exportadores de infraestructura lo convierten a XLSX o PDF.
package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/application/pricing"
	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// StatusTotals transacciones de un estado.
type StatusTotals struct {
	Status string
	Count  int
	Total  decimal.Decimal
}

// TypeTotals transacciones de un tipo de movimiento (venta o compra) con su desglose por estado.
type TypeTotals struct {
	Type     string
	Count    int
	Total    decimal.Decimal
	ByStatus []StatusTotals
}

// DayLogistics movimientos y unidades de un día.
type DayLogistics struct {
	Date      time.Time
	Sales     int
	Purchases int
	UnitsOut  int
	UnitsIn   int
}

// ProductLine fila de producto para los listados de temporada y rebaja.
type ProductLine struct {
	ID             int64
	Name           string
	Category       string
	Price          decimal.Decimal
	EffectivePrice decimal.Decimal
	Discount       decimal.Decimal
	Stock          int
	Seasonal       bool
	ExpirationDate *time.Time
}

// WeeklyReport reporte de cierre de la ventana [From, To].
type WeeklyReport struct {
	From         time.Time
	To           time.Time
	Transactions []TypeTotals
	// Untracked transacciones de la ventana sin movimiento asociado.
	Untracked   int
	Logistics   []DayLogistics
	Seasonal    []ProductLine
	Discounted  []ProductLine
	Adjustments []pricing.AdjustmentNote
}

// Build arma el reporte con el estado actual de los almacenes.
func Build(stores *store.Stores, from, to time.Time, adjustments []pricing.AdjustmentNote) *WeeklyReport {
	from, to = entity.DateOf(from), entity.DateOf(to)
	r := &WeeklyReport{From: from, To: to, Adjustments: append([]pricing.AdjustmentNote(nil), adjustments...)}

	types := stores.Movements.TypeByTransaction()
	txs := stores.Ledger.QueryByDateRange(from, to)
	r.Transactions, r.Untracked = transactional(txs, types)
	r.Logistics = logistics(stores, from, to)

	for _, p := range stores.Catalog.All() {
		if p.Seasonal {
			r.Seasonal = append(r.Seasonal, lineOf(p))
		}
		if p.HasDiscount() {
			r.Discounted = append(r.Discounted, lineOf(p))
		}
	}
	return r
}

func transactional(txs []*entity.Transaction, types map[int64]string) ([]TypeTotals, int) {
	byType := map[string]*TypeTotals{
		entity.MovementSale:     {Type: entity.MovementSale, Total: decimal.Zero},
		entity.MovementPurchase: {Type: entity.MovementPurchase, Total: decimal.Zero},
	}
	byStatus := map[string]map[string]*StatusTotals{
		entity.MovementSale:     {},
		entity.MovementPurchase: {},
	}
	untracked := 0
	for _, t := range txs {
		kind, ok := types[t.ID]
		tt := byType[kind]
		if !ok || tt == nil {
			untracked++
			continue
		}
		tt.Count++
		tt.Total = tt.Total.Add(t.Total)
		st := byStatus[kind][t.Status]
		if st == nil {
			st = &StatusTotals{Status: t.Status, Total: decimal.Zero}
			byStatus[kind][t.Status] = st
		}
		st.Count++
		st.Total = st.Total.Add(t.Total)
	}

	out := make([]TypeTotals, 0, 2)
	for _, kind := range []string{entity.MovementSale, entity.MovementPurchase} {
		tt := byType[kind]
		for _, st := range byStatus[kind] {
			tt.ByStatus = append(tt.ByStatus, *st)
		}
		sort.Slice(tt.ByStatus, func(i, j int) bool { return tt.ByStatus[i].Status < tt.ByStatus[j].Status })
		out = append(out, *tt)
	}
	return out, untracked
}

func logistics(stores *store.Stores, from, to time.Time) []DayLogistics {
	days := entity.DaysBetween(from, to) + 1
	if days <= 0 {
		return nil
	}
	out := make([]DayLogistics, days)
	for i := range out {
		out[i].Date = from.AddDate(0, 0, i)
	}
	for _, m := range stores.Movements.QueryByDateRange(from, to) {
		day := &out[entity.DaysBetween(from, m.Date)]
		units := 0
		if t, err := stores.Ledger.Get(m.TransactionID); err == nil {
			for _, it := range t.Items {
				units += it.Units()
			}
		}
		switch m.Type {
		case entity.MovementSale:
			day.Sales++
			day.UnitsOut += units
		case entity.MovementPurchase:
			day.Purchases++
			day.UnitsIn += units
		}
	}
	return out
}

func lineOf(p *entity.Product) ProductLine {
	return ProductLine{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category,
		Price:          p.Price,
		EffectivePrice: p.EffectivePrice(),
		Discount:       p.Discount,
		Stock:          p.Stock,
		Seasonal:       p.Seasonal,
		ExpirationDate: p.ExpirationDate,
	}
}

// TotalOf total de un tipo de movimiento; cero si no hay transacciones.
func (r *WeeklyReport) TotalOf(kind string) decimal.Decimal {
	for _, t := range r.Transactions {
		if t.Type == kind {
			return t.Total
		}
	}
	return decimal.Zero
}
