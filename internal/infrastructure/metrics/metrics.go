// Package metrics colectores Prometheus de la simulación y las políticas de inventario.
// Todos los métodos aceptan receptor nil para que los componentes funcionen sin métricas.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "abarroteria"

// Metrics agrupa los colectores; se registran en el Registerer dado a New.
type Metrics struct {
	Events      *prometheus.CounterVec // eventos del planificador por generador y resultado
	Discounts   *prometheus.CounterVec // rebajas aplicadas por tipo
	Restocks    prometheus.Counter
	RestockQty  prometheus.Counter
	Sales       prometheus.Counter
	Adjustments *prometheus.CounterVec // notas del ajuste semanal por regla
	SimTick     prometheus.Gauge
}

// New crea y registra los colectores. Con reg nil usa un registro propio (tests).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "events_total",
			Help: "Eventos despachados por el planificador.",
		}, []string{"generator", "result"}),
		Discounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "rotation", Name: "discounts_applied_total",
			Help: "Rebajas aplicadas a productos.",
		}, []string{"type"}),
		Restocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "reorder", Name: "restocks_total",
			Help: "Compras a proveedor generadas por reabastecimiento.",
		}),
		RestockQty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "reorder", Name: "restocked_units_total",
			Help: "Unidades repuestas.",
		}),
		Sales: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "simulation", Name: "sales_total",
			Help: "Ventas registradas por la simulación.",
		}),
		Adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pricing", Name: "adjustments_total",
			Help: "Ajustes del cierre semanal por regla.",
		}, []string{"rule"}),
		SimTick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "current_tick",
			Help: "Último instante simulado despachado.",
		}),
	}
	reg.MustRegister(m.Events, m.Discounts, m.Restocks, m.RestockQty, m.Sales, m.Adjustments, m.SimTick)
	return m
}

// Handler expone el registro por defecto de Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor expone un registro concreto.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) Event(generator string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.Events.WithLabelValues(generator, result).Inc()
}

func (m *Metrics) Tick(t int) {
	if m == nil {
		return
	}
	m.SimTick.Set(float64(t))
}

func (m *Metrics) Discount(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Discounts.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) Restock(qty int) {
	if m == nil {
		return
	}
	m.Restocks.Inc()
	m.RestockQty.Add(float64(qty))
}

func (m *Metrics) Sale() {
	if m == nil {
		return
	}
	m.Sales.Inc()
}

func (m *Metrics) Adjustment(rule string) {
	if m == nil {
		return
	}
	m.Adjustments.WithLabelValues(rule).Inc()
}
