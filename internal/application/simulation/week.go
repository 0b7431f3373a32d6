package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/application/pricing"
	"github.com/jhoicas/abarroteria/internal/application/reorder"
	"github.com/jhoicas/abarroteria/internal/application/reporting"
	"github.com/jhoicas/abarroteria/internal/application/rotation"
	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/infrastructure/metrics"
	"github.com/jhoicas/abarroteria/pkg/config"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// WeekConfig parámetros del escenario semanal.
type WeekConfig struct {
	Horizon       int
	Start         time.Time
	Seed          int64
	ItemsPerSale  int
	SeasonalNames []string
	// Onboard registra proveedores, productos y clientes iniciales. Sin él la semana corre
	// sobre lo que ya haya en los almacenes.
	Onboard             bool
	Thresholds          reorder.Thresholds
	MarginTarget        decimal.Decimal
	MinRotation         int
	ExpirationDaysAhead int
	ExpirationDiscount  decimal.Decimal
}

// DefaultWeekConfig semana de 7 días con las constantes de la tienda.
func DefaultWeekConfig(start time.Time) WeekConfig {
	return WeekConfig{
		Horizon:             7,
		Start:               start,
		Seed:                1,
		ItemsPerSale:        2,
		SeasonalNames:       config.DefaultSeasonalNames,
		Onboard:             true,
		Thresholds:          reorder.Thresholds{StockThreshold: 40, StockTarget: 30},
		MarginTarget:        decimal.RequireFromString("0.25"),
		MinRotation:         3,
		ExpirationDaysAhead: 2,
		ExpirationDiscount:  decimal.RequireFromString("0.5"),
	}
}

// WeekConfigFrom toma los parámetros de la configuración cargada.
func WeekConfigFrom(cfg *config.Config) WeekConfig {
	return WeekConfig{
		Horizon:             cfg.Simulation.HorizonDays,
		Start:               cfg.Simulation.StartDate,
		Seed:                cfg.Simulation.Seed,
		ItemsPerSale:        cfg.Simulation.ItemsPerSale,
		SeasonalNames:       cfg.Simulation.SeasonalNames,
		Onboard:             true,
		Thresholds:          reorder.Thresholds{StockThreshold: cfg.Policy.StockThreshold, StockTarget: cfg.Policy.StockTarget},
		MarginTarget:        cfg.Policy.MarginTarget,
		MinRotation:         cfg.Policy.MinRotation,
		ExpirationDaysAhead: cfg.Policy.ExpirationDaysAhead,
		ExpirationDiscount:  cfg.Policy.ExpirationDiscount,
	}
}

// WeekResult resultado de una semana simulada.
type WeekResult struct {
	RunID       uuid.UUID
	Start       time.Time
	End         time.Time
	Summary     RunSummary
	Adjustments []pricing.AdjustmentNote
	Report      *reporting.WeeklyReport
}

// Week escenario semanal: alta inicial, temporada, rebajas y ventas diarias, y cierre con ajuste de precios.
type Week struct {
	cfg       WeekConfig
	stores    *store.Stores
	log       *logger.Logger
	metrics   *metrics.Metrics
	rng       *rand.Rand
	scheduler *Scheduler
	policy    *rotation.Policy
	reorder   *reorder.Controller
	adjuster  *pricing.Adjuster

	once        sync.Once
	adjustments []pricing.AdjustmentNote
}

// NewWeek prepara la semana y registra sus generadores. Generadores adicionales registrados
// después con Register corren detrás de los propios en cada instante.
func NewWeek(stores *store.Stores, cfg WeekConfig, log *logger.Logger, m *metrics.Metrics) (*Week, error) {
	if cfg.Horizon < 1 {
		return nil, fmt.Errorf("%w: horizonte de %d días", domain.ErrInvalidInput, cfg.Horizon)
	}
	if cfg.ItemsPerSale < 1 {
		cfg.ItemsPerSale = 1
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}
	sched := NewScheduler(cfg.Horizon, NewCalendar(cfg.Start), log, m)
	w := &Week{
		cfg:       cfg,
		stores:    stores,
		log:       log.Component("semana"),
		metrics:   m,
		rng:       rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15)),
		scheduler: sched,
		policy:    rotation.NewPolicy(stores.Catalog, stores.Rotations, log, m, sched.Now),
		reorder:   reorder.NewController(stores, cfg.Thresholds, log, m),
		adjuster:  pricing.NewAdjuster(stores, cfg.Thresholds, log, m, sched.Now),
	}

	h := cfg.Horizon
	var gens []Generator
	if cfg.Onboard {
		gens = append(gens,
			Generator{Name: "alta_proveedores", Offsets: At(0), Unit: w.onboardSuppliers},
			Generator{Name: "alta_productos", Offsets: At(0), Unit: w.onboardProducts},
			Generator{Name: "alta_clientes", Offsets: At(0), Unit: w.onboardClients},
		)
	} else {
		gens = append(gens, Generator{Name: "mapear_categorias", Offsets: At(0), Unit: w.mapCategories})
	}
	gens = append(gens,
		Generator{Name: "marcar_temporada", Offsets: At(1), Unit: w.markSeasonal},
		Generator{Name: "rebajas_diarias", Offsets: Daily(1, h), Unit: w.dailyDiscounts},
		Generator{Name: "venta_diaria", Offsets: Daily(1, h), Unit: w.dailySale},
		Generator{Name: "ajuste_semanal", Offsets: At(h + 1), Unit: w.weeklyAdjustment},
	)
	for _, g := range gens {
		if err := sched.Register(g); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Register agrega un generador externo a la semana.
func (w *Week) Register(g Generator) error { return w.scheduler.Register(g) }

// Policy política de rotación usada por la semana (su reloj es el calendario simulado).
func (w *Week) Policy() *rotation.Policy { return w.policy }

// Reorder controlador de reabastecimiento de la semana.
func (w *Week) Reorder() *reorder.Controller { return w.reorder }

// Calendar calendario de la semana.
func (w *Week) Calendar() Calendar { return w.scheduler.Calendar() }

// Run ejecuta la semana una sola vez; una segunda llamada devuelve domain.ErrConflict.
func (w *Week) Run(ctx context.Context) (*WeekResult, error) {
	ran := false
	var res *WeekResult
	w.once.Do(func() {
		ran = true
		runID := uuid.New()
		cal := w.scheduler.Calendar()
		start, end := cal.Date(1), cal.Date(w.cfg.Horizon)
		w.log.Info().Str("run_id", runID.String()).Str("inicio", entity.FormatDate(start)).
			Int("horizonte", w.cfg.Horizon).Int64("semilla", w.cfg.Seed).Msg("semana iniciada")

		summary := w.scheduler.Run(ctx)
		res = &WeekResult{
			RunID:       runID,
			Start:       start,
			End:         end,
			Summary:     summary,
			Adjustments: w.adjustments,
			Report:      reporting.Build(w.stores, start, end, w.adjustments),
		}
	})
	if !ran {
		return nil, fmt.Errorf("%w: la semana ya se ejecutó", domain.ErrConflict)
	}
	return res, nil
}

func (w *Week) onboardSuppliers(ctx context.Context, tick Tick) error {
	for i, s := range SeedSuppliers {
		sup, err := w.stores.Suppliers.Register(ctx, entity.NewSupplier{
			Name:    s.Name,
			Contact: fmt.Sprintf("ContactoProv%d", i),
			Address: fmt.Sprintf("DirecciónProv%d", i),
		})
		if err != nil {
			if err := w.skip(ctx, tick, "alta de proveedor", err); err != nil {
				return err
			}
			continue
		}
		if err := w.reorder.AssignCategory(s.Category, sup.ID); err != nil {
			return err
		}
	}
	return nil
}

// mapCategories asigna las categorías a los proveedores ya registrados con los nombres conocidos.
func (w *Week) mapCategories(_ context.Context, _ Tick) error {
	for _, s := range SeedSuppliers {
		if found := w.stores.Suppliers.Query(store.SupplierFilter{Name: s.Name}); len(found) > 0 {
			if err := w.reorder.AssignCategory(s.Category, found[0].ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Week) onboardProducts(ctx context.Context, tick Tick) error {
	for _, sp := range SeedProducts {
		expiration := tick.Date.AddDate(0, 0, 10+w.rng.IntN(5))
		in := entity.NewProduct{
			Name:           sp.Name,
			Description:    sp.Description,
			Category:       sp.Category,
			Price:          sp.Price,
			Stock:          sp.Stock,
			ExpirationDate: &expiration,
			Discount:       decimal.Zero,
		}
		draft := &entity.Product{Name: sp.Name, Category: sp.Category}
		if sup, err := w.reorder.SelectSupplier(draft); err == nil {
			id := sup.ID
			in.SupplierID = &id
		}
		if _, err := w.stores.Catalog.Register(ctx, in); err != nil {
			if err := w.skip(ctx, tick, "alta de producto", err); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Week) onboardClients(ctx context.Context, tick Tick) error {
	kinds := []string{entity.ClientTypeRetail, entity.ClientTypeWholesale}
	for i, name := range SeedClients {
		_, err := w.stores.Clients.Register(ctx, entity.NewClient{
			Name:    name,
			Contact: fmt.Sprintf("Contacto%d", i),
			Address: fmt.Sprintf("Dirección%d", i),
			Type:    kinds[w.rng.IntN(len(kinds))],
			Credit:  decimal.NewFromInt(int64(w.rng.IntN(201))),
		})
		if err != nil {
			if err := w.skip(ctx, tick, "alta de cliente", err); err != nil {
				return err
			}
		}
	}
	_, err := w.stores.Clients.EnsureInternal(ctx)
	return err
}

func (w *Week) markSeasonal(ctx context.Context, tick Tick) error {
	n, err := w.policy.MarkSeasonal(ctx, w.cfg.SeasonalNames)
	w.log.Debug().Int("day", tick.T).Int("marcados", n).Msg("productos de temporada")
	return err
}

func (w *Week) dailyDiscounts(ctx context.Context, tick Tick) error {
	n, err := w.policy.ApplyDailyDiscounts(ctx, w.cfg.ExpirationDaysAhead, w.cfg.ExpirationDiscount)
	w.log.Debug().Int("day", tick.T).Int("rebajas", n).Msg("rebajas del día")
	return err
}

func (w *Week) dailySale(ctx context.Context, tick Tick) error {
	customers := w.stores.Clients.Customers()
	products := w.stores.Catalog.All()
	if len(customers) == 0 || len(products) == 0 {
		w.log.Debug().Int("day", tick.T).Msg("sin clientes o productos para vender")
		return nil
	}
	client := customers[w.rng.IntN(len(customers))]
	k := min(w.cfg.ItemsPerSale, len(products))

	items := make([]entity.LineItem, 0, k)
	for _, i := range w.rng.Perm(len(products))[:k] {
		p := products[i]
		price := p.EffectivePrice()
		_, err := w.reorder.Sell(ctx, reorder.SaleLine{ProductID: p.ID, Quantity: 1}, tick.Date)
		switch {
		case err == nil:
		case errors.Is(err, reorder.ErrRestock):
			w.log.Warn().Err(err).Int("day", tick.T).Int64("product_id", p.ID).Msg("venta sin reposición")
		default:
			if err := w.skip(ctx, tick, "venta de producto", err); err != nil {
				return err
			}
			continue
		}
		items = append(items, entity.LineItem{ProductID: p.ID, Quantity: 1, UnitPrice: price})
	}
	if len(items) == 0 {
		return nil
	}

	statuses := []string{entity.StatusCompleted, entity.StatusPending}
	tx, err := w.stores.Ledger.Register(ctx, entity.NewTransaction{
		ClientID:    client.ID,
		Items:       items,
		Date:        tick.Date,
		PaymentType: PaymentTypes[w.rng.IntN(len(PaymentTypes))],
		Status:      statuses[w.rng.IntN(len(statuses))],
	})
	if err != nil {
		return fmt.Errorf("%w: venta del día %d sin registrar tras descontar stock: %w", domain.ErrPartialFailure, tick.T, err)
	}
	if _, err := w.stores.Movements.Register(ctx, entity.NewMovement{TransactionID: tx.ID, Date: tick.Date, Type: entity.MovementSale}); err != nil {
		return fmt.Errorf("%w: venta %d sin movimiento: %w", domain.ErrPartialFailure, tx.ID, err)
	}
	w.metrics.Sale()
	w.log.Info().Int("day", tick.T).Int64("client_id", client.ID).Int("productos", len(items)).
		Str("total", tx.Total.StringFixed(2)).Msg("venta registrada")
	return nil
}

func (w *Week) weeklyAdjustment(ctx context.Context, tick Tick) error {
	cal := w.scheduler.Calendar()
	notes, err := w.adjuster.AdjustPricingAndStock(ctx, cal.Date(1), cal.Date(w.cfg.Horizon), w.cfg.MarginTarget, w.cfg.MinRotation)
	w.adjustments = notes
	w.log.Info().Int("day", tick.T).Int("ajustes", len(notes)).Msg("cierre de semana")
	return err
}

// skip descarta errores recuperables de una entidad y deja pasar los demás.
func (w *Week) skip(ctx context.Context, tick Tick, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if domain.IsRecoverable(err) {
		w.log.Warn().Err(err).Int("day", tick.T).Str("op", op).Msg("unidad omitida")
		return nil
	}
	return err
}
