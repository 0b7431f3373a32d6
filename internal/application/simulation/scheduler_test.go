package simulation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abarroteria/internal/application/simulation"
	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/infrastructure/metrics"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

var start = time.Date(2025, time.June, 2, 15, 30, 0, 0, time.UTC)

// recorder anota "nombre@t" en el orden de despacho.
type recorder struct{ log []string }

func (r *recorder) unit(name string) simulation.Unit {
	return func(_ context.Context, tick simulation.Tick) error {
		r.log = append(r.log, fmt.Sprintf("%s@%d", name, tick.T))
		return nil
	}
}

func newScheduler(horizon int) *simulation.Scheduler {
	return simulation.NewScheduler(horizon, simulation.NewCalendar(start), logger.Nop(), nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden de despacho
// ──────────────────────────────────────────────────────────────────────────────

// Eventos del mismo instante se despachan en orden de registro.
func TestScheduler_OrdenYDesempate(t *testing.T) {
	rec := &recorder{}
	s := newScheduler(3)
	require.NoError(t, s.Register(simulation.Generator{Name: "a", Offsets: simulation.Daily(1, 3), Unit: rec.unit("a")}))
	require.NoError(t, s.Register(simulation.Generator{Name: "b", Offsets: simulation.At(2, 0), Unit: rec.unit("b")}))
	require.NoError(t, s.Register(simulation.Generator{Name: "c", Offsets: simulation.At(1, 1), Unit: rec.unit("c")}))

	sum := s.Run(context.Background())

	assert.Equal(t, []string{"b@0", "a@1", "c@1", "c@1", "a@2", "b@2", "a@3"}, rec.log)
	assert.Equal(t, 7, sum.Processed)
	assert.Zero(t, sum.Failed)
	assert.Equal(t, 3, sum.LastTick)
}

// Nada con instante mayor que H+1 se despacha.
func TestScheduler_Horizonte(t *testing.T) {
	rec := &recorder{}
	s := newScheduler(7)
	require.NoError(t, s.Register(simulation.Generator{Name: "cierre", Offsets: simulation.At(8), Unit: rec.unit("cierre")}))
	require.NoError(t, s.Register(simulation.Generator{Name: "tarde", Offsets: simulation.At(9, 20), Unit: rec.unit("tarde")}))

	sum := s.Run(context.Background())

	assert.Equal(t, []string{"cierre@8"}, rec.log)
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 8, sum.LastTick)
}

func TestScheduler_OffsetNegativo(t *testing.T) {
	s := newScheduler(7)
	err := s.Register(simulation.Generator{Name: "x", Offsets: simulation.At(1, -1), Unit: (&recorder{}).unit("x")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = s.Register(simulation.Generator{Name: "sin unidad", Offsets: simulation.At(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos
// ──────────────────────────────────────────────────────────────────────────────

// Un error o un pánico en una unidad se cuenta y la corrida sigue.
func TestScheduler_ErroresYPanicosNoDetienen(t *testing.T) {
	rec := &recorder{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s := simulation.NewScheduler(2, simulation.NewCalendar(start), logger.Nop(), m)

	require.NoError(t, s.Register(simulation.Generator{Name: "falla", Offsets: simulation.At(1), Unit: func(context.Context, simulation.Tick) error {
		return errors.New("sin conexión")
	}}))
	require.NoError(t, s.Register(simulation.Generator{Name: "panico", Offsets: simulation.At(1), Unit: func(context.Context, simulation.Tick) error {
		var p map[string]int
		p["x"] = 1
		return nil
	}}))
	require.NoError(t, s.Register(simulation.Generator{Name: "sigue", Offsets: simulation.Daily(1, 2), Unit: rec.unit("sigue")}))

	sum := s.Run(context.Background())

	assert.Equal(t, []string{"sigue@1", "sigue@2"}, rec.log)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("panico", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Events.WithLabelValues("sigue", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SimTick))
}

// La cancelación detiene el despacho entre eventos.
func TestScheduler_Cancelacion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	s := newScheduler(5)
	require.NoError(t, s.Register(simulation.Generator{Name: "dia", Offsets: simulation.Daily(1, 5), Unit: func(ctx context.Context, tick simulation.Tick) error {
		if tick.T == 2 {
			cancel()
		}
		return rec.unit("dia")(ctx, tick)
	}}))

	sum := s.Run(ctx)

	assert.Equal(t, []string{"dia@1", "dia@2"}, rec.log)
	assert.Equal(t, 3, sum.Skipped)
}

// ──────────────────────────────────────────────────────────────────────────────
// Calendario
// ──────────────────────────────────────────────────────────────────────────────

func TestCalendar_FechaPorInstante(t *testing.T) {
	cal := simulation.NewCalendar(start)
	first := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, first, cal.Date(0))
	assert.Equal(t, first, cal.Date(1))
	assert.Equal(t, first.AddDate(0, 0, 6), cal.Date(7))
	assert.Equal(t, first.AddDate(0, 0, 7), cal.Date(8))
}

// Now sigue al evento en curso.
func TestScheduler_NowSigueAlEvento(t *testing.T) {
	s := newScheduler(3)
	var seen []time.Time
	require.NoError(t, s.Register(simulation.Generator{Name: "reloj", Offsets: simulation.Daily(1, 3), Unit: func(context.Context, simulation.Tick) error {
		seen = append(seen, s.Now())
		return nil
	}}))
	s.Run(context.Background())

	cal := s.Calendar()
	assert.Equal(t, []time.Time{cal.Date(1), cal.Date(2), cal.Date(3)}, seen)
}
