package simulation

import (
	"context"
	"time"

	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/infrastructure/metrics"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// Overrides cambia parámetros de una corrida puntual; los valores cero conservan la base.
type Overrides struct {
	Horizon      int
	Seed         *int64
	Start        time.Time
	ItemsPerSale int
}

// Runner ejecuta semanas sobre almacenes compartidos. Cada semana corre en exclusiva sobre
// stores: ni otra semana ni las mutaciones HTTP exclusivas se intercalan con ella.
type Runner struct {
	stores *store.Stores
	base   WeekConfig
	log    *logger.Logger
	m      *metrics.Metrics
}

// NewRunner construye el ejecutor con la configuración base de cada semana.
func NewRunner(stores *store.Stores, base WeekConfig, log *logger.Logger, m *metrics.Metrics) *Runner {
	return &Runner{stores: stores, base: base, log: log, m: m}
}

// Run ejecuta una semana completa. Con el catálogo vacío hace el alta inicial; si no, corre sobre
// el inventario existente. Si hay otra operación exclusiva en curso devuelve domain.ErrConflict.
func (r *Runner) Run(ctx context.Context, o Overrides) (*WeekResult, error) {
	var res *WeekResult
	err := r.stores.TryExclusive(func() error {
		var err error
		res, err = r.run(ctx, o)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) run(ctx context.Context, o Overrides) (*WeekResult, error) {
	cfg := r.base
	if o.Horizon != 0 {
		cfg.Horizon = o.Horizon
	}
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	if !o.Start.IsZero() {
		cfg.Start = o.Start
	}
	if o.ItemsPerSale != 0 {
		cfg.ItemsPerSale = o.ItemsPerSale
	}
	cfg.Onboard = r.stores.Catalog.Len() == 0

	week, err := NewWeek(r.stores, cfg, r.log, r.m)
	if err != nil {
		return nil, err
	}
	return week.Run(ctx)
}
