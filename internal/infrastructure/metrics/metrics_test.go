package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abarroteria/internal/infrastructure/metrics"
)

// Los métodos con receptor nil no hacen nada.
func TestMetrics_Nil(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Event("venta_diaria", true)
		m.Tick(3)
		m.Discount("expiracion", 2)
		m.Restock(5)
		m.Sale()
		m.Adjustment("precio_subido")
	})
}

func TestMetrics_Contadores(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.Event("venta_diaria", true)
	m.Event("venta_diaria", false)
	m.Discount("temporada", 3)
	m.Discount("temporada", 0)
	m.Restock(21)
	m.Restock(4)
	m.Tick(8)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("venta_diaria", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Discounts.WithLabelValues("temporada")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Restocks))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.RestockQty))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.SimTick))
}

func TestHandlerFor_Expone(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Sale()

	rec := httptest.NewRecorder()
	metrics.HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "abarroteria_simulation_sales_total 1")
}
