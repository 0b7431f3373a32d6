// Package pricing ajusta precios y política de stock al cierre de la semana según margen y rotación.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/application/reorder"
	"github.com/jhoicas/abarroteria/internal/application/rotation"
	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/infrastructure/metrics"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// Reglas del ajuste semanal.
const (
	RulePriceUp        = "precio_subido"
	RulePriceDown      = "precio_bajado"
	RuleStockTarget    = "stock_objetivo"
	RuleThreshold      = "umbral_stock"
	RuleForcedDiscount = "rebaja_forzada"
)

// Constantes de las reglas.
var (
	raiseFactor    = decimal.RequireFromString("1.10")
	lowerFactor    = decimal.RequireFromString("0.95")
	forcedFactor   = decimal.RequireFromString("0.8")
	ForcedDiscount = decimal.RequireFromString("0.2")
	highMarginGap  = decimal.RequireFromString("0.15")
)

const (
	overstockGap       = 20 // stock > objetivo + overstockGap
	targetStep         = 10
	targetFloor        = 10
	thresholdStep      = 5
	thresholdFloor     = 5
	expiringWithinDays = 2
)

// AdjustmentNote describe una regla que se disparó para un producto.
type AdjustmentNote struct {
	ProductID   int64
	ProductName string
	Rule        string
	Message     string
}

func (n AdjustmentNote) String() string {
	return fmt.Sprintf("[Ajuste] Producto %s (ID %d): %s", n.ProductName, n.ProductID, n.Message)
}

// ProductMetrics ventas, compras y margen de un producto en una ventana.
type ProductMetrics struct {
	ProductID      int64
	TotalSales     decimal.Decimal
	TotalPurchases decimal.Decimal
	Rotation       int // transacciones de venta que lo incluyen
	Purchases      int
	Margin         decimal.Decimal
}

// Adjuster ajuste semanal de precios y política de stock.
type Adjuster struct {
	stores     *store.Stores
	thresholds reorder.Thresholds
	log        *logger.Logger
	metrics    *metrics.Metrics
	now        rotation.Clock
}

// NewAdjuster construye el ajustador. thresholds son los globales del reabastecimiento;
// now nil usa time.Now.
func NewAdjuster(stores *store.Stores, thresholds reorder.Thresholds, log *logger.Logger, m *metrics.Metrics, now rotation.Clock) *Adjuster {
	if now == nil {
		now = time.Now
	}
	return &Adjuster{stores: stores, thresholds: thresholds, log: log.Component("ajuste_semanal"), metrics: m, now: now}
}

// window transacciones de la ventana con el tipo de su movimiento.
type window struct {
	txs   []*entity.Transaction
	types map[int64]string
}

func (a *Adjuster) window(from, to time.Time) window {
	return window{txs: a.stores.Ledger.QueryByDateRange(from, to), types: a.stores.Movements.TypeByTransaction()}
}

func (w window) metricsFor(productID int64) ProductMetrics {
	m := ProductMetrics{ProductID: productID, TotalSales: decimal.Zero, TotalPurchases: decimal.Zero, Margin: decimal.Zero}
	for _, t := range w.txs {
		if !t.References(productID) {
			continue
		}
		switch w.types[t.ID] {
		case entity.MovementSale:
			m.TotalSales = m.TotalSales.Add(t.Total)
			m.Rotation++
		case entity.MovementPurchase:
			m.TotalPurchases = m.TotalPurchases.Add(t.Total)
			m.Purchases++
		}
	}
	if m.TotalSales.IsPositive() {
		m.Margin = m.TotalSales.Sub(m.TotalPurchases).Div(m.TotalSales)
	}
	return m
}

// Metrics margen y rotación del producto en [from, to]. Solo cuentan las transacciones
// cuyo movimiento es de venta o de compra.
func (a *Adjuster) Metrics(productID int64, from, to time.Time) (ProductMetrics, error) {
	if _, err := a.stores.Catalog.Get(productID); err != nil {
		return ProductMetrics{}, err
	}
	return a.window(from, to).metricsFor(productID), nil
}

// AdjustPricingAndStock recorre el catálogo y aplica, por producto:
//   - precio +10% si margen < marginTarget, -5% si margen > marginTarget+0.15;
//   - objetivo de stock -10 (mínimo 10) con sobrestock y baja rotación, o umbral -5 (mínimo 5)
//     con stock bajo y rotación suficiente;
//   - rebaja forzada de 20% sobre el precio ya ajustado si la rotación es baja o el producto
//     expira en 2 días o menos. No respeta una rebaja previa.
//
// Los errores recuperables de un producto se registran y el producto se omite.
func (a *Adjuster) AdjustPricingAndStock(ctx context.Context, windowStart, windowEnd time.Time, marginTarget decimal.Decimal, minRotation int) ([]AdjustmentNote, error) {
	if minRotation < 0 {
		return nil, fmt.Errorf("%w: rotación mínima negativa: %d", domain.ErrInvalidInput, minRotation)
	}
	if entity.DateOf(windowEnd).Before(entity.DateOf(windowStart)) {
		return nil, fmt.Errorf("%w: ventana invertida %s..%s", domain.ErrInvalidInput,
			entity.FormatDate(windowStart), entity.FormatDate(windowEnd))
	}
	w := a.window(windowStart, windowEnd)
	today := entity.DateOf(a.now())

	var notes []AdjustmentNote
	for _, p := range a.stores.Catalog.All() {
		if err := ctx.Err(); err != nil {
			return notes, err
		}
		pn, err := a.adjust(ctx, p, w.metricsFor(p.ID), today, marginTarget, minRotation)
		notes = append(notes, pn...)
		if err != nil {
			if !domain.IsRecoverable(err) || ctx.Err() != nil {
				return notes, err
			}
			a.log.Warn().Err(err).Int64("product_id", p.ID).Msg("ajuste omitido")
		}
	}
	a.log.Info().Int("notas", len(notes)).Str("desde", entity.FormatDate(windowStart)).
		Str("hasta", entity.FormatDate(windowEnd)).Msg("ajuste semanal terminado")
	return notes, nil
}

func (a *Adjuster) adjust(ctx context.Context, p *entity.Product, m ProductMetrics, today time.Time, marginTarget decimal.Decimal, minRotation int) ([]AdjustmentNote, error) {
	var notes []AdjustmentNote
	note := func(rule, format string, args ...any) {
		notes = append(notes, AdjustmentNote{ProductID: p.ID, ProductName: p.Name, Rule: rule, Message: fmt.Sprintf(format, args...)})
		a.metrics.Adjustment(rule)
	}
	margin := m.Margin.StringFixed(2)

	// Precio por margen
	switch {
	case m.Margin.LessThan(marginTarget):
		price := p.Price.Mul(raiseFactor).Round(2)
		updated, err := a.stores.Catalog.Update(ctx, p.ID, entity.PriceChange{Price: price})
		if err != nil {
			return notes, err
		}
		note(RulePriceUp, "Precio subido de %s a %s por margen bajo (%s)", p.Price.StringFixed(2), price.StringFixed(2), margin)
		p = updated
	case m.Margin.GreaterThan(marginTarget.Add(highMarginGap)):
		price := p.Price.Mul(lowerFactor).Round(2)
		updated, err := a.stores.Catalog.Update(ctx, p.ID, entity.PriceChange{Price: price})
		if err != nil {
			return notes, err
		}
		note(RulePriceDown, "Precio bajado de %s a %s por margen alto (%s)", p.Price.StringFixed(2), price.StringFixed(2), margin)
		p = updated
	}

	// Política de stock
	threshold, target := a.thresholds.For(p)
	switch {
	case p.Stock > target+overstockGap && m.Rotation < minRotation:
		next := max(targetFloor, target-targetStep)
		updated, err := a.stores.Catalog.Update(ctx, p.ID, entity.StockPolicyChange{ReorderThreshold: p.ReorderThreshold, StockTarget: next})
		if err != nil {
			return notes, err
		}
		note(RuleStockTarget, "Stock objetivo ajustado a %d por sobrestock y baja rotación", next)
		p = updated
	case p.Stock < threshold && m.Rotation >= minRotation:
		next := max(thresholdFloor, threshold-thresholdStep)
		updated, err := a.stores.Catalog.Update(ctx, p.ID, entity.StockPolicyChange{ReorderThreshold: next, StockTarget: p.StockTarget})
		if err != nil {
			return notes, err
		}
		note(RuleThreshold, "Umbral stock ajustado a %d por substock y alta rotación", next)
		p = updated
	}

	// Rebaja forzada
	expiring := p.ExpirationDate != nil && entity.DaysBetween(today, *p.ExpirationDate) <= expiringWithinDays
	if m.Rotation < minRotation || expiring {
		price := p.Price.Mul(forcedFactor).Round(2)
		if _, err := a.stores.Catalog.Update(ctx, p.ID, entity.PriceChange{Price: price}, entity.DiscountChange{Discount: ForcedDiscount}); err != nil {
			return notes, err
		}
		note(RuleForcedDiscount, "Rebaja aplicada, nuevo precio %s", price.StringFixed(2))
		a.record(ctx, entity.Rotation{ProductID: p.ID, Start: today, End: today.AddDate(0, 0, 6), Type: entity.RotationForced})
		a.metrics.Discount(entity.RotationForced, 1)
	}
	return notes, nil
}

func (a *Adjuster) record(ctx context.Context, r entity.Rotation) {
	if a.stores.Rotations == nil {
		return
	}
	if err := a.stores.Rotations.Record(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Warn().Err(err).Int64("product_id", r.ProductID).Msg("no se pudo registrar la rebaja forzada")
	}
}
