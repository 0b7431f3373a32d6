package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abarroteria/internal/application/pricing"
	"github.com/jhoicas/abarroteria/internal/application/reporting"
	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/infrastructure/memory"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

var monday = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	stores *store.Stores
	mango  *entity.Product
	arroz  *entity.Product
	client *entity.Client
	supID  int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	stores, err := store.Open(ctx, memory.NewDB().Repositories(), logger.Nop())
	require.NoError(t, err)

	mango, err := stores.Catalog.Register(ctx, entity.NewProduct{Name: "Mango", Category: "Fruta", Price: dec("1.50"), Stock: 40, Seasonal: true, Discount: dec("0.15")})
	require.NoError(t, err)
	arroz, err := stores.Catalog.Register(ctx, entity.NewProduct{Name: "Arroz", Category: "Granos", Price: dec("2.00"), Stock: 60})
	require.NoError(t, err)
	client, err := stores.Clients.Register(ctx, entity.NewClient{Name: "Ana", Type: entity.ClientTypeRetail})
	require.NoError(t, err)
	sup, err := stores.Suppliers.Register(ctx, entity.NewSupplier{Name: "Granos del Istmo"})
	require.NoError(t, err)
	return fixture{stores: stores, mango: mango, arroz: arroz, client: client, supID: sup.ID}
}

// register crea una transacción y, si kind no está vacío, su movimiento.
func (f fixture) register(t *testing.T, day time.Time, status, kind string, items ...entity.LineItem) *entity.Transaction {
	t.Helper()
	ctx := context.Background()
	in := entity.NewTransaction{ClientID: f.client.ID, Items: items, Date: day, PaymentType: "efectivo", Status: status}
	if kind == entity.MovementPurchase {
		in.SupplierID = &f.supID
	}
	tx, err := f.stores.Ledger.Register(ctx, in)
	require.NoError(t, err)
	if kind != "" {
		_, err = f.stores.Movements.Register(ctx, entity.NewMovement{TransactionID: tx.ID, Date: day, Type: kind})
		require.NoError(t, err)
	}
	return tx
}

// ──────────────────────────────────────────────────────────────────────────────
// Reporte semanal
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_ResumenTransaccional(t *testing.T) {
	f := newFixture(t)
	f.register(t, monday, entity.StatusCompleted, entity.MovementSale,
		entity.LineItem{ProductID: f.mango.ID, Quantity: 2, UnitPrice: dec("1.28")})
	f.register(t, monday.AddDate(0, 0, 1), entity.StatusPending, entity.MovementSale,
		entity.LineItem{ProductID: f.arroz.ID, UnitPrice: dec("2.00")})
	f.register(t, monday.AddDate(0, 0, 1), entity.StatusCompleted, entity.MovementPurchase,
		entity.LineItem{ProductID: f.arroz.ID, Quantity: 10, UnitPrice: dec("2.00")})
	f.register(t, monday.AddDate(0, 0, 2), entity.StatusCompleted, "",
		entity.LineItem{ProductID: f.arroz.ID, UnitPrice: dec("2.00")})
	// Fuera de la ventana.
	f.register(t, monday.AddDate(0, 0, 9), entity.StatusCompleted, entity.MovementSale,
		entity.LineItem{ProductID: f.arroz.ID, UnitPrice: dec("2.00")})

	notes := []pricing.AdjustmentNote{{ProductID: f.arroz.ID, ProductName: "Arroz", Rule: pricing.RuleForcedDiscount}}
	r := reporting.Build(f.stores, monday, monday.AddDate(0, 0, 6), notes)

	require.Len(t, r.Transactions, 2)
	sales := r.Transactions[0]
	assert.Equal(t, entity.MovementSale, sales.Type)
	assert.Equal(t, 2, sales.Count)
	assert.True(t, dec("4.56").Equal(sales.Total))
	require.Len(t, sales.ByStatus, 2)
	assert.Equal(t, entity.StatusCompleted, sales.ByStatus[0].Status)
	assert.Equal(t, entity.StatusPending, sales.ByStatus[1].Status)

	assert.True(t, dec("20").Equal(r.TotalOf(entity.MovementPurchase)))
	assert.True(t, r.TotalOf("devolucion").IsZero())
	assert.Equal(t, 1, r.Untracked)
	assert.Equal(t, notes, r.Adjustments)
}

func TestBuild_LogisticaPorDia(t *testing.T) {
	f := newFixture(t)
	f.register(t, monday, entity.StatusCompleted, entity.MovementSale,
		entity.LineItem{ProductID: f.mango.ID, Quantity: 2, UnitPrice: dec("1.28")},
		entity.LineItem{ProductID: f.arroz.ID, UnitPrice: dec("2.00")})
	f.register(t, monday.AddDate(0, 0, 3), entity.StatusCompleted, entity.MovementPurchase,
		entity.LineItem{ProductID: f.arroz.ID, Quantity: 10, UnitPrice: dec("2.00")})

	r := reporting.Build(f.stores, monday, monday.AddDate(0, 0, 6), nil)

	require.Len(t, r.Logistics, 7)
	assert.Equal(t, monday, r.Logistics[0].Date)
	assert.Equal(t, 1, r.Logistics[0].Sales)
	assert.Equal(t, 3, r.Logistics[0].UnitsOut)
	assert.Equal(t, 1, r.Logistics[3].Purchases)
	assert.Equal(t, 10, r.Logistics[3].UnitsIn)
	assert.Zero(t, r.Logistics[6].Sales)
}

func TestBuild_ListasDeRotacion(t *testing.T) {
	f := newFixture(t)
	r := reporting.Build(f.stores, monday, monday.AddDate(0, 0, 6), nil)

	require.Len(t, r.Seasonal, 1)
	require.Len(t, r.Discounted, 1)
	assert.Equal(t, "Mango", r.Discounted[0].Name)
	assert.True(t, dec("1.28").Equal(r.Discounted[0].EffectivePrice))
	assert.Empty(t, r.Adjustments)
}

// Ventana invertida: sin días de logística.
func TestBuild_VentanaInvertida(t *testing.T) {
	f := newFixture(t)
	r := reporting.Build(f.stores, monday.AddDate(0, 0, 6), monday, nil)
	assert.Empty(t, r.Logistics)
}
