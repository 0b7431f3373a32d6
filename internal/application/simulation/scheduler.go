// Package simulation planificador de eventos discretos por días y el escenario semanal de la abarrotería.
package simulation

import (
	"container/heap"
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/infrastructure/metrics"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// Calendar convierte instantes simulados en fechas: t=0 y t=1 son el día inicial, t ↦ inicio + (t−1) días.
type Calendar struct {
	Start time.Time
}

// NewCalendar calendario que arranca en la fecha de start.
func NewCalendar(start time.Time) Calendar {
	return Calendar{Start: entity.DateOf(start)}
}

// Date fecha del instante t.
func (c Calendar) Date(t int) time.Time {
	return c.Start.AddDate(0, 0, max(t-1, 0))
}

// Tick instante simulado entregado a cada unidad de trabajo.
type Tick struct {
	T    int
	Date time.Time
}

// Unit cuerpo de un evento. Corre completo antes del siguiente evento.
type Unit func(ctx context.Context, tick Tick) error

// Generator conjunto de instantes en los que se ejecuta Unit.
type Generator struct {
	Name    string
	Offsets []int
	Unit    Unit
}

// At instantes explícitos.
func At(ts ...int) []int { return ts }

// Daily instantes from..to inclusive.
func Daily(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for t := from; t <= to; t++ {
		out = append(out, t)
	}
	return out
}

// RunSummary resultado de una corrida.
type RunSummary struct {
	Processed int // eventos ejecutados sin error
	Failed    int // eventos que devolvieron error o entraron en pánico
	Skipped   int // eventos fuera del horizonte o no despachados por cancelación
	LastTick  int
}

type event struct {
	t   int
	reg int
	pos int
}

// queue min-heap por (instante, orden de registro, posición del offset).
type queue []event

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.t != b.t {
		return a.t < b.t
	}
	if a.reg != b.reg {
		return a.reg < b.reg
	}
	return a.pos < b.pos
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any) { *q = append(*q, x.(event)) }
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

// Scheduler despacha los eventos registrados en orden determinista hasta el instante horizon+1.
// No es seguro para uso concurrente; los eventos nunca se intercalan.
type Scheduler struct {
	horizon    int
	calendar   Calendar
	log        *logger.Logger
	metrics    *metrics.Metrics
	generators []Generator
	current    Tick
}

// NewScheduler planificador con horizonte H días. m puede ser nil.
func NewScheduler(horizon int, calendar Calendar, log *logger.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		horizon:  horizon,
		calendar: calendar,
		log:      log.Component("planificador"),
		metrics:  m,
		current:  Tick{T: 0, Date: calendar.Date(0)},
	}
}

// Horizon días simulados.
func (s *Scheduler) Horizon() int { return s.horizon }

// Calendar calendario de la corrida.
func (s *Scheduler) Calendar() Calendar { return s.calendar }

// Now fecha del evento en curso (o del último despachado). Sirve de reloj para las políticas.
func (s *Scheduler) Now() time.Time { return s.current.Date }

// Register agrega un generador. El orden de registro desempata eventos del mismo instante.
func (s *Scheduler) Register(g Generator) error {
	if g.Unit == nil {
		return fmt.Errorf("%w: generador %q sin unidad", domain.ErrInvalidInput, g.Name)
	}
	for _, t := range g.Offsets {
		if t < 0 {
			return fmt.Errorf("%w: generador %q con instante negativo %d", domain.ErrInvalidInput, g.Name, t)
		}
	}
	g.Offsets = append([]int(nil), g.Offsets...)
	s.generators = append(s.generators, g)
	return nil
}

// Run despacha todos los eventos con instante ≤ horizon+1. Los errores y pánicos de una unidad se
// registran y cuentan; la corrida sigue. La cancelación de ctx detiene el despacho entre eventos.
func (s *Scheduler) Run(ctx context.Context) RunSummary {
	limit := s.horizon + 1
	var sum RunSummary
	q := make(queue, 0)
	for reg, g := range s.generators {
		for pos, t := range g.Offsets {
			if t > limit {
				sum.Skipped++
				continue
			}
			q = append(q, event{t: t, reg: reg, pos: pos})
		}
	}
	heap.Init(&q)

	for q.Len() > 0 {
		if ctx.Err() != nil {
			sum.Skipped += q.Len()
			s.log.Warn().Err(ctx.Err()).Int("pendientes", q.Len()).Msg("simulación cancelada")
			break
		}
		e := heap.Pop(&q).(event)
		g := s.generators[e.reg]
		s.current = Tick{T: e.t, Date: s.calendar.Date(e.t)}
		sum.LastTick = e.t
		s.metrics.Tick(e.t)

		if err := s.dispatch(ctx, g, s.current); err != nil {
			sum.Failed++
			s.metrics.Event(g.Name, false)
			s.log.Error().Err(err).Str("event", g.Name).Int("day", e.t).Msg("evento fallido")
			continue
		}
		sum.Processed++
		s.metrics.Event(g.Name, true)
	}
	s.log.Info().Int("procesados", sum.Processed).Int("fallidos", sum.Failed).
		Int("omitidos", sum.Skipped).Int("ultimo", sum.LastTick).Msg("simulación terminada")
	return sum
}

func (s *Scheduler) dispatch(ctx context.Context, g Generator, tick Tick) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("event", g.Name).Str("stack", string(debug.Stack())).Msg("pánico en evento")
			err = fmt.Errorf("pánico en %s: %v", g.Name, r)
		}
	}()
	return g.Unit(ctx, tick)
}
