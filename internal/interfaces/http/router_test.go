package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abarroteria/internal/application/dto"
	"github.com/jhoicas/abarroteria/internal/application/pricing"
	"github.com/jhoicas/abarroteria/internal/application/reorder"
	"github.com/jhoicas/abarroteria/internal/application/rotation"
	"github.com/jhoicas/abarroteria/internal/application/simulation"
	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/infrastructure/memory"
	"github.com/jhoicas/abarroteria/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/abarroteria/internal/interfaces/http"
	"github.com/jhoicas/abarroteria/pkg/config"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var today = time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var defaults = config.PolicyConfig{
	StockThreshold:      40,
	StockTarget:         30,
	MarginTarget:        dec("0.25"),
	MinRotation:         3,
	ExpirationDaysAhead: 2,
	ExpirationDiscount:  dec("0.5"),
}

type env struct {
	app    *fiber.App
	db     *memory.DB
	stores *store.Stores
	mango  *entity.Product
	arroz  *entity.Product
	client *entity.Client
	sale   *entity.Transaction
}

// newEnv arma la API sobre almacenes en memoria con dos productos, un cliente y una venta.
func newEnv(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	db := memory.NewDB()
	stores, err := store.Open(ctx, db.Repositories(), logger.Nop())
	require.NoError(t, err)

	exp := today.AddDate(0, 0, 1)
	mango, err := stores.Catalog.Register(ctx, entity.NewProduct{Name: "Mango", Category: "Fruta", Price: dec("1.50"), Stock: 40, ExpirationDate: &exp, Seasonal: true})
	require.NoError(t, err)
	arroz, err := stores.Catalog.Register(ctx, entity.NewProduct{Name: "Arroz", Category: "Granos", Price: dec("2.00"), Stock: 60})
	require.NoError(t, err)
	client, err := stores.Clients.Register(ctx, entity.NewClient{Name: "Ana", Type: entity.ClientTypeRetail})
	require.NoError(t, err)
	sale, err := stores.Ledger.Register(ctx, entity.NewTransaction{
		ClientID: client.ID, Items: []entity.LineItem{{ProductID: arroz.ID, UnitPrice: dec("2.00")}},
		Date: today, PaymentType: "efectivo", Status: entity.StatusCompleted,
	})
	require.NoError(t, err)
	_, err = stores.Movements.Register(ctx, entity.NewMovement{TransactionID: sale.ID, Date: today, Type: entity.MovementSale})
	require.NoError(t, err)

	clock := func() time.Time { return today }
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	thresholds := reorder.Thresholds{StockThreshold: defaults.StockThreshold, StockTarget: defaults.StockTarget}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AppName:  "abarroteria-test",
		Stores:   stores,
		Policy:   rotation.NewPolicy(stores.Catalog, stores.Rotations, logger.Nop(), m, clock),
		Adjuster: pricing.NewAdjuster(stores, thresholds, logger.Nop(), m, clock),
		Runner:   simulation.NewRunner(stores, simulation.DefaultWeekConfig(today), logger.Nop(), m),
		Defaults: defaults,
		Metrics:  metrics.HandlerFor(reg),
	})
	return env{app: app, db: db, stores: stores, mango: mango, arroz: arroz, client: client, sale: sale}
}

// do lanza la petición y decodifica el cuerpo JSON en out (si no es nil).
func (e env) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	e := newEnv(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/health", "", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "abarroteria-test", body["service"])
}

func TestProducts_ListaYFiltros(t *testing.T) {
	e := newEnv(t)

	var all dto.ProductListResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/products", "", &all))
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 2, all.Page.Total)
	assert.Equal(t, 20, all.Page.Limit)

	var fruits dto.ProductListResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/products?category=FRUTA", "", &fruits))
	require.Len(t, fruits.Items, 1)
	assert.Equal(t, "Mango", fruits.Items[0].Name)
	require.NotNil(t, fruits.Items[0].ExpirationDate)
	assert.Equal(t, "2025-06-11", *fruits.Items[0].ExpirationDate)

	var page dto.ProductListResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/products?limit=1&offset=1", "", &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Arroz", page.Items[0].Name)
}

func TestProducts_PorID(t *testing.T) {
	e := newEnv(t)

	var p dto.ProductResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/products/"+itoa(e.arroz.ID), "", &p))
	assert.Equal(t, "Arroz", p.Name)
	assert.True(t, dec("2.00").Equal(p.EffectivePrice))

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/products/999", "", &errBody))
	assert.Equal(t, "NOT_FOUND", errBody.Code)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/products/abc", "", &errBody))
	assert.Equal(t, "INVALID_ID", errBody.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rotación
// ──────────────────────────────────────────────────────────────────────────────

func TestRotation_RebajasPorExpiracion(t *testing.T) {
	e := newEnv(t)

	var seasonal []dto.ProductResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/rotation/seasonal", "", &seasonal))
	assert.Len(t, seasonal, 1)

	var res dto.DiscountRunResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/rotation/expiration-discounts", `{"discount":"0.3"}`, &res))
	assert.Equal(t, 1, res.Applied)
	require.Len(t, res.Discounted, 1)
	assert.True(t, dec("0.3").Equal(res.Discounted[0].Discount))

	// Segunda pasada con el body vacío: nada nuevo.
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/rotation/expiration-discounts", "", &res))
	assert.Zero(t, res.Applied)

	var discounted []dto.ProductResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/rotation/discounted", "", &discounted))
	assert.Len(t, discounted, 1)
}

func TestRotation_ParametrosInvalidos(t *testing.T) {
	e := newEnv(t)
	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/rotation/expiration-discounts", `{"discount":"1.5"}`, &errBody))
	assert.Equal(t, "VALIDATION", errBody.Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/rotation/expiration-discounts", `{"days_ahead":-1}`, &errBody))

	// Rebaja 0 no cuenta como aplicada ni se repite en cada llamada.
	for range 2 {
		assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/rotation/expiration-discounts", `{"discount":"0"}`, &errBody))
		assert.Equal(t, "VALIDATION", errBody.Code)
	}
	history, err := e.stores.Rotations.ListByProduct(context.Background(), e.mango.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones, movimientos y clientes
// ──────────────────────────────────────────────────────────────────────────────

func TestTransactions_Filtros(t *testing.T) {
	e := newEnv(t)

	var txs []dto.TransactionResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/transactions?from=2025-06-10&to=2025-06-10", "", &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "2025-06-10", txs[0].Date)
	assert.True(t, dec("2").Equal(txs[0].Total))

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/transactions?status=pendiente", "", &txs))
	assert.Empty(t, txs)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/transactions?from=2025-06-11", "", &txs))
	assert.Empty(t, txs)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/transactions?status=anulada", "", &errBody))
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/transactions?from=10-06-2025", "", &errBody))
	assert.Equal(t, "VALIDATION", errBody.Code)
}

func TestMovements_Filtros(t *testing.T) {
	e := newEnv(t)

	var ms []dto.MovementResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/movements?type=venta", "", &ms))
	require.Len(t, ms, 1)
	assert.Equal(t, e.sale.ID, ms[0].TransactionID)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/movements?type=compra&from=2025-06-01", "", &ms))
	assert.Empty(t, ms)
}

// Eliminar un cliente elimina sus transacciones y movimientos.
func TestClients_DeleteEnCascada(t *testing.T) {
	e := newEnv(t)
	path := "/api/clients/" + itoa(e.client.ID)

	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, path, "", nil))

	var txs []dto.TransactionResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/transactions", "", &txs))
	assert.Empty(t, txs)
	var ms []dto.MovementResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/movements", "", &ms))
	assert.Empty(t, ms)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, path, "", &errBody))
}

// Con la persistencia caída el borrado responde 503 y nada cambia.
func TestClients_DeleteAlmacenNoDisponible(t *testing.T) {
	e := newEnv(t)
	e.db.FailOn(memory.OpClientDelete, nil)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusServiceUnavailable, e.do(t, http.MethodDelete, "/api/clients/"+itoa(e.client.ID), "", &errBody))
	assert.Equal(t, "STORE_UNAVAILABLE", errBody.Code)
	assert.Len(t, e.stores.Ledger.All(), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Precios y simulación
// ──────────────────────────────────────────────────────────────────────────────

func TestPricing_Ajuste(t *testing.T) {
	e := newEnv(t)

	var res dto.AdjustPricingResponse
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/pricing/adjust", `{"from":"2025-06-04","to":"2025-06-10"}`, &res))
	require.NotEmpty(t, res.Notes)
	assert.Equal(t, pricing.RulePriceUp, res.Notes[0].Rule)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/pricing/adjust", `{"from":"2025-06-10","to":"2025-06-04"}`, &errBody))
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/pricing/adjust", `{"from":"2025-06-04"}`, &errBody))
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/pricing/adjust", `{"from":"2025-06-04","to":"2025-06-10","min_rotation":-2}`, &errBody))
}

func TestSimulations_Run(t *testing.T) {
	e := newEnv(t)

	var res dto.SimulationResponse
	assert.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/simulations", `{"horizon_days":3,"seed":7,"start_date":"2025-06-11"}`, &res))
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "2025-06-11", res.Start)
	assert.Equal(t, "2025-06-13", res.End)
	assert.Positive(t, res.Processed)
	assert.Zero(t, res.Failed)
	assert.NotEmpty(t, res.Adjustments)

	// El catálogo ya tenía productos: no hay alta inicial.
	assert.Equal(t, 2, e.stores.Catalog.Len())

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/simulations", `{"start_date":"ayer"}`, &errBody))
}

// Con otra operación exclusiva en curso la simulación no se intercala: 409.
func TestSimulations_ConflictoConOperacionEnCurso(t *testing.T) {
	e := newEnv(t)
	holding, release := make(chan struct{}), make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- e.stores.Exclusive(func() error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/api/simulations", `{"horizon_days":1}`, &errBody))
	assert.Equal(t, "CONFLICT", errBody.Code)
	assert.Len(t, e.stores.Ledger.All(), 1)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/simulations", `{"horizon_days":1,"start_date":"2025-06-11"}`, &dto.SimulationResponse{}))
}

func TestMetrics_Expuestas(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/rotation/expiration-discounts", "", &dto.DiscountRunResponse{}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `abarroteria_rotation_discounts_applied_total{type="expiracion"} 1`)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
