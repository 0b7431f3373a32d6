package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abarroteria/internal/application/pricing"
	"github.com/jhoicas/abarroteria/internal/application/reorder"
	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/infrastructure/memory"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	weekStart = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	weekEnd   = weekStart.AddDate(0, 0, 6)
	closing   = weekStart.AddDate(0, 0, 7)
	target    = decimal.RequireFromString("0.25")
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type env struct {
	stores   *store.Stores
	adjuster *pricing.Adjuster
	client   *entity.Client
	internal *entity.Client
	supplier *entity.Supplier
}

func newEnv(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	stores, err := store.Open(ctx, memory.NewDB().Repositories(), logger.Nop())
	require.NoError(t, err)
	cli, err := stores.Clients.Register(ctx, entity.NewClient{Name: "Ana Gómez", Type: entity.ClientTypeRetail})
	require.NoError(t, err)
	internal, err := stores.Clients.EnsureInternal(ctx)
	require.NoError(t, err)
	sup, err := stores.Suppliers.Register(ctx, entity.NewSupplier{Name: "Frutas Panamá"})
	require.NoError(t, err)
	adj := pricing.NewAdjuster(stores, reorder.Thresholds{StockThreshold: 40, StockTarget: 30}, logger.Nop(), nil,
		func() time.Time { return closing })
	return env{stores: stores, adjuster: adj, client: cli, internal: internal, supplier: sup}
}

func (e env) product(t *testing.T, price string, stock int, expiration *time.Time) *entity.Product {
	t.Helper()
	p, err := e.stores.Catalog.Register(context.Background(), entity.NewProduct{
		Name: "Mango", Category: "Fruta", Price: dec(price), Stock: stock, ExpirationDate: expiration,
	})
	require.NoError(t, err)
	return p
}

// sale registra una venta de total exacto con su movimiento de venta.
func (e env) sale(t *testing.T, productID int64, total string, date time.Time) {
	t.Helper()
	ctx := context.Background()
	tx, err := e.stores.Ledger.Register(ctx, entity.NewTransaction{
		ClientID: e.client.ID, Items: []entity.LineItem{{ProductID: productID, Quantity: 1, UnitPrice: dec(total)}},
		Date: date, PaymentType: "efectivo", Status: entity.StatusCompleted,
	})
	require.NoError(t, err)
	_, err = e.stores.Movements.Register(ctx, entity.NewMovement{TransactionID: tx.ID, Date: date, Type: entity.MovementSale})
	require.NoError(t, err)
}

func (e env) purchase(t *testing.T, productID int64, total string, date time.Time) {
	t.Helper()
	ctx := context.Background()
	supID := e.supplier.ID
	tx, err := e.stores.Ledger.Register(ctx, entity.NewTransaction{
		ClientID: e.internal.ID, SupplierID: &supID,
		Items: []entity.LineItem{{ProductID: productID, Quantity: 1, UnitPrice: dec(total)}},
		Date:  date, PaymentType: "compra a proveedor Frutas Panamá", Status: entity.StatusCompleted,
	})
	require.NoError(t, err)
	_, err = e.stores.Movements.Register(ctx, entity.NewMovement{TransactionID: tx.ID, Date: date, Type: entity.MovementPurchase})
	require.NoError(t, err)
}

func rules(notes []pricing.AdjustmentNote) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Rule)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Regla de precio
// ──────────────────────────────────────────────────────────────────────────────

// Ventas 100, compras 60, objetivo 0.25: margen 0.40 está en el límite y el precio no cambia.
func TestAdjust_MargenEnElLimiteNoCambiaPrecio(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "1.20", 45, nil)
	e.sale(t, p.ID, "100", weekStart)
	e.purchase(t, p.ID, "60", weekStart.AddDate(0, 0, 1))

	m, err := e.adjuster.Metrics(p.ID, weekStart, weekEnd)
	require.NoError(t, err)
	assert.True(t, dec("0.4").Equal(m.Margin), "margen %s", m.Margin)
	assert.Equal(t, 1, m.Rotation)

	notes, err := e.adjuster.AdjustPricingAndStock(context.Background(), weekStart, weekEnd, target, 1)
	require.NoError(t, err)
	assert.Empty(t, notes)

	got, _ := e.stores.Catalog.Get(p.ID)
	assert.True(t, dec("1.20").Equal(got.Price))
}

// Ventas 100, compras 90: margen 0.10 < 0.25 y el precio sube exactamente 10% redondeado a 2 decimales.
func TestAdjust_MargenBajoSubePrecio(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "1.20", 45, nil)
	e.sale(t, p.ID, "100", weekStart)
	e.purchase(t, p.ID, "90", weekStart)

	notes, err := e.adjuster.AdjustPricingAndStock(context.Background(), weekStart, weekEnd, target, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{pricing.RulePriceUp}, rules(notes))

	got, _ := e.stores.Catalog.Get(p.ID)
	assert.True(t, dec("1.32").Equal(got.Price), "precio %s", got.Price)
	assert.Contains(t, notes[0].String(), "Precio subido de 1.20 a 1.32")
}

// Margen sobre objetivo + 0.15: el precio baja 5%.
func TestAdjust_MargenAltoBajaPrecio(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "2.00", 45, nil)
	e.sale(t, p.ID, "100", weekStart)

	notes, err := e.adjuster.AdjustPricingAndStock(context.Background(), weekStart, weekEnd, target, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{pricing.RulePriceDown}, rules(notes))

	got, _ := e.stores.Catalog.Get(p.ID)
	assert.True(t, dec("1.90").Equal(got.Price))
}

// Las transacciones fuera de la ventana o sin movimiento no cuentan.
func TestMetrics_SoloVentanaYConMovimiento(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "1.00", 45, nil)
	e.sale(t, p.ID, "10", weekStart.AddDate(0, 0, -1))
	e.sale(t, p.ID, "10", weekEnd)
	_, err := e.stores.Ledger.Register(context.Background(), entity.NewTransaction{
		ClientID: e.client.ID, Items: []entity.LineItem{{ProductID: p.ID, UnitPrice: dec("50")}},
		Date: weekStart, PaymentType: "efectivo", Status: entity.StatusPending,
	})
	require.NoError(t, err)

	m, err := e.adjuster.Metrics(p.ID, weekStart, weekEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Rotation)
	assert.True(t, dec("10").Equal(m.TotalSales))
	assert.True(t, m.Margin.Equal(decimal.NewFromInt(1)))

	_, err = e.adjuster.Metrics(999, weekStart, weekEnd)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Política de stock
// ──────────────────────────────────────────────────────────────────────────────

// Sobrestock con baja rotación baja el objetivo de 10 en 10 hasta el mínimo 10.
func TestAdjust_SobrestockBajaObjetivo(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "1.00", 60, nil)

	for _, want := range []int{20, 10, 10} {
		notes, err := e.adjuster.AdjustPricingAndStock(context.Background(), weekStart, weekEnd, target, 3)
		require.NoError(t, err)
		assert.Contains(t, rules(notes), pricing.RuleStockTarget)
		got, _ := e.stores.Catalog.Get(p.ID)
		assert.Equal(t, want, got.StockTarget)
	}
}

// Stock bajo con rotación suficiente baja el umbral de 5 en 5 (mínimo 5).
func TestAdjust_SubstockBajaUmbral(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "1.00", 10, nil)
	e.sale(t, p.ID, "1.00", weekStart)
	e.purchase(t, p.ID, "0.70", weekStart)

	notes, err := e.adjuster.AdjustPricingAndStock(context.Background(), weekStart, weekEnd, target, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{pricing.RuleThreshold}, rules(notes))

	got, _ := e.stores.Catalog.Get(p.ID)
	assert.Equal(t, 35, got.ReorderThreshold)
	assert.Zero(t, got.StockTarget, "el objetivo propio no se toca")
}

// ──────────────────────────────────────────────────────────────────────────────
// Rebaja forzada
// ──────────────────────────────────────────────────────────────────────────────

// Sin ventas: sube 10% por margen 0 y luego se rebaja 20% sobre ese precio (se componen).
func TestAdjust_RebajaForzadaSeComponeConPrecio(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "2.00", 20, nil)
	_, err := e.stores.Catalog.Update(context.Background(), p.ID, entity.DiscountChange{Discount: dec("0.15")})
	require.NoError(t, err)

	notes, err := e.adjuster.AdjustPricingAndStock(context.Background(), weekStart, weekEnd, target, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{pricing.RulePriceUp, pricing.RuleForcedDiscount}, rules(notes))

	got, _ := e.stores.Catalog.Get(p.ID)
	assert.True(t, dec("1.76").Equal(got.Price), "2.00 × 1.10 × 0.8 = 1.76, obtenido %s", got.Price)
	assert.True(t, pricing.ForcedDiscount.Equal(got.Discount), "ignora la rebaja previa")

	history, err := e.stores.Rotations.ListByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.RotationForced, history[0].Type)
}

// Con buena rotación solo la expiración cercana (incluida la ya vencida) fuerza la rebaja.
func TestAdjust_RebajaForzadaPorExpiracion(t *testing.T) {
	cases := []struct {
		name   string
		days   int
		forced bool
	}{
		{"expira en 2 días", 2, true},
		{"vencido", -1, true},
		{"expira en 3 días", 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			exp := closing.AddDate(0, 0, tc.days)
			p := e.product(t, "1.00", 45, &exp)
			e.sale(t, p.ID, "1.00", weekStart)
			e.purchase(t, p.ID, "0.70", weekStart)

			notes, err := e.adjuster.AdjustPricingAndStock(context.Background(), weekStart, weekEnd, target, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.forced, len(notes) == 1 && notes[0].Rule == pricing.RuleForcedDiscount, "notas %v", rules(notes))
		})
	}
}

func TestAdjust_ParametrosInvalidos(t *testing.T) {
	e := newEnv(t)
	_, err := e.adjuster.AdjustPricingAndStock(context.Background(), weekEnd, weekStart, target, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.adjuster.AdjustPricingAndStock(context.Background(), weekStart, weekEnd, target, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
