package entity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Producto
// ──────────────────────────────────────────────────────────────────────────────

func TestNewProduct_Build(t *testing.T) {
	exp := time.Date(2025, time.June, 12, 17, 45, 0, 0, time.UTC)
	p, err := entity.NewProduct{Name: "Mango", Category: "Fruta", Price: dec("1.5"), Stock: 40, ExpirationDate: &exp}.Build()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC), *p.ExpirationDate, "la expiración se guarda como fecha")

	cases := []struct {
		name string
		in   entity.NewProduct
	}{
		{"sin nombre", entity.NewProduct{Category: "Fruta"}},
		{"sin categoría", entity.NewProduct{Name: "Mango"}},
		{"precio negativo", entity.NewProduct{Name: "Mango", Category: "Fruta", Price: dec("-1")}},
		{"stock negativo", entity.NewProduct{Name: "Mango", Category: "Fruta", Stock: -1}},
		{"rebaja mayor que 1", entity.NewProduct{Name: "Mango", Category: "Fruta", Discount: dec("1.5")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Build()
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestProduct_EffectivePrice(t *testing.T) {
	p := &entity.Product{Price: dec("2.00"), Discount: dec("0.15")}
	assert.True(t, dec("1.70").Equal(p.EffectivePrice()))
	assert.True(t, p.HasDiscount())

	p.Discount = decimal.Zero
	assert.False(t, p.HasDiscount())
}

// Los cambios tipados se aplican sobre una copia; un cambio inválido no deja nada aplicado.
func TestApplyProductChanges(t *testing.T) {
	sup := int64(3)
	p := &entity.Product{ID: 1, Name: "Leche", Category: "Lacteo", Price: dec("1.2"), Stock: 10, SupplierID: &sup}

	next, err := entity.ApplyProductChanges(p,
		entity.PriceChange{Price: dec("1.32")},
		entity.StockChange{Stock: 30},
		entity.DetailsChange{Description: "Entera"},
		entity.SupplierRefChange{},
	)
	require.NoError(t, err)
	assert.True(t, dec("1.32").Equal(next.Price))
	assert.Equal(t, 30, next.Stock)
	assert.Equal(t, "Leche", next.Name)
	assert.Equal(t, "Entera", next.Description)
	assert.Nil(t, next.SupplierID)

	// El producto de entrada no cambia.
	assert.Equal(t, 10, p.Stock)
	require.NotNil(t, p.SupplierID)

	_, err = entity.ApplyProductChanges(p, entity.StockChange{Stock: 5}, entity.DiscountChange{Discount: dec("-0.1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = entity.ApplyProductChanges(p, entity.StockPolicyChange{ReorderThreshold: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 10, p.Stock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacción
// ──────────────────────────────────────────────────────────────────────────────

// Total = Σ precio × cantidad de las líneas, fijado al crear.
func TestNewTransaction_Total(t *testing.T) {
	tx, err := entity.NewTransaction{
		ClientID: 1,
		Items: []entity.LineItem{
			{ProductID: 1, Quantity: 2, UnitPrice: dec("1.25")},
			{ProductID: 2, UnitPrice: dec("0.40")},
		},
		Date:        time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC),
		PaymentType: "efectivo",
		Status:      entity.StatusCompleted,
	}.Build()
	require.NoError(t, err)
	assert.True(t, dec("2.90").Equal(tx.Total))
	assert.False(t, tx.IsPurchase())
	assert.True(t, tx.References(2))
	assert.False(t, tx.References(3))
}

func TestNewTransaction_Invalida(t *testing.T) {
	base := entity.NewTransaction{
		ClientID: 1, Items: []entity.LineItem{{ProductID: 1, UnitPrice: dec("1")}},
		Date: time.Now(), PaymentType: "tarjeta", Status: entity.StatusPending,
	}

	noItems := base
	noItems.Items = nil
	badStatus := base
	badStatus.Status = "anulada"
	negative := base
	negative.Items = []entity.LineItem{{ProductID: 1, UnitPrice: dec("-1")}}

	for name, in := range map[string]entity.NewTransaction{"sin líneas": noItems, "estado": badStatus, "precio negativo": negative} {
		_, err := in.Build()
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

// La columna de productos acepta líneas completas e IDs desnudos.
func TestUnmarshalItems(t *testing.T) {
	items, err := entity.UnmarshalItems([]byte(`[{"id":4,"cantidad":3,"precio":"0.5"}, 7]`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Units())
	assert.Equal(t, int64(7), items[1].ProductID)
	assert.Equal(t, 1, items[1].Units())

	data, err := entity.MarshalItems(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	var bad []entity.LineItem
	assert.Error(t, json.Unmarshal([]byte(`["x"]`), &bad))
}

// ──────────────────────────────────────────────────────────────────────────────
// Fechas
// ──────────────────────────────────────────────────────────────────────────────

func TestFechas(t *testing.T) {
	d := time.Date(2025, time.June, 2, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, entity.DaysBetween(d, d.Add(time.Minute)))
	assert.True(t, entity.InRange(d, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), d))
	assert.False(t, entity.InRange(d, d.AddDate(0, 0, 1), d.AddDate(0, 0, 2)))

	parsed, err := entity.ParseDate("2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", entity.FormatDate(parsed))

	_, err = entity.ParseDate("02/06/2025")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
