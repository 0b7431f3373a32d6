// Package rotation decide qué productos son de temporada y aplica rebajas por expiración y temporada.
package rotation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
	"github.com/jhoicas/abarroteria/internal/infrastructure/metrics"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// Rebajas de temporada: meses lluviosos (mayo a noviembre) y secos (diciembre a abril).
var (
	WetSeasonDiscount = decimal.RequireFromString("0.15")
	DrySeasonDiscount = decimal.RequireFromString("0.10")
)

// Clock devuelve la fecha "de hoy" para la política (el calendario simulado en una simulación).
type Clock func() time.Time

// Policy reglas de rotación y rebaja sobre el catálogo.
type Policy struct {
	catalog *store.Catalog
	history repository.RotationRepository
	log     *logger.Logger
	metrics *metrics.Metrics
	now     Clock
}

// NewPolicy construye la política. history y m pueden ser nil; now nil usa time.Now.
func NewPolicy(catalog *store.Catalog, history repository.RotationRepository, log *logger.Logger, m *metrics.Metrics, now Clock) *Policy {
	if now == nil {
		now = time.Now
	}
	return &Policy{catalog: catalog, history: history, log: log.Component("rotacion"), metrics: m, now: now}
}

// Today fecha calendario según el reloj de la política.
func (p *Policy) Today() time.Time { return entity.DateOf(p.now()) }

// IsSeasonal indica si el producto está marcado como de temporada.
func (p *Policy) IsSeasonal(productID int64) (bool, error) {
	prod, err := p.catalog.Get(productID)
	if err != nil {
		return false, err
	}
	return prod.Seasonal, nil
}

// DiscountOf fracción de rebaja vigente del producto.
func (p *Policy) DiscountOf(productID int64) (decimal.Decimal, error) {
	prod, err := p.catalog.Get(productID)
	if err != nil {
		return decimal.Zero, err
	}
	return prod.Discount, nil
}

// SeasonalProducts productos marcados como de temporada, en orden de alta.
func (p *Policy) SeasonalProducts() []*entity.Product {
	var out []*entity.Product
	for _, prod := range p.catalog.All() {
		if prod.Seasonal {
			out = append(out, prod)
		}
	}
	return out
}

// DiscountedProducts productos con rebaja mayor que cero, en orden de alta.
func (p *Policy) DiscountedProducts() []*entity.Product {
	var out []*entity.Product
	for _, prod := range p.catalog.All() {
		if prod.HasDiscount() {
			out = append(out, prod)
		}
	}
	return out
}

// MarkSeasonal marca como de temporada los productos cuyo nombre contiene alguno de names
// (sin distinguir mayúsculas). Devuelve cuántos productos cambiaron.
func (p *Policy) MarkSeasonal(ctx context.Context, names []string) (int, error) {
	folder := cases.Fold()
	keys := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			keys = append(keys, folder.String(n))
		}
	}
	marked := 0
	for _, prod := range p.catalog.All() {
		if prod.Seasonal || !containsAny(folder.String(prod.Name), keys) {
			continue
		}
		if _, err := p.catalog.Update(ctx, prod.ID, entity.SeasonalChange{Seasonal: true}); err != nil {
			if err := p.skip(ctx, "marcar temporada", prod.ID, err); err != nil {
				return marked, err
			}
			continue
		}
		marked++
	}
	return marked, nil
}

// ApplyExpirationDiscounts fija discount = pct en los productos que expiran entre hoy y hoy+daysAhead
// y no tienen rebaja. Productos sin fecha de expiración se omiten.
func (p *Policy) ApplyExpirationDiscounts(ctx context.Context, daysAhead int, pct decimal.Decimal) (int, error) {
	if !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("%w: porcentaje de rebaja fuera de (0,1]: %s", domain.ErrInvalidInput, pct)
	}
	if daysAhead < 0 {
		return 0, fmt.Errorf("%w: días de anticipación negativos: %d", domain.ErrInvalidInput, daysAhead)
	}
	today := p.Today()
	limit := today.AddDate(0, 0, daysAhead)
	applied := 0
	for _, prod := range p.catalog.All() {
		if prod.ExpirationDate == nil || prod.HasDiscount() {
			continue
		}
		if !entity.InRange(*prod.ExpirationDate, today, limit) {
			continue
		}
		if _, err := p.catalog.Update(ctx, prod.ID, entity.DiscountChange{Discount: pct}); err != nil {
			if err := p.skip(ctx, "rebaja por expiración", prod.ID, err); err != nil {
				return applied, err
			}
			continue
		}
		applied++
		p.record(ctx, entity.Rotation{ProductID: prod.ID, Start: today, End: *prod.ExpirationDate, Type: entity.RotationExpiration})
		p.log.Debug().Int64("product_id", prod.ID).Str("rebaja", pct.String()).Msg("rebaja por expiración aplicada")
	}
	p.metrics.Discount(entity.RotationExpiration, applied)
	return applied, nil
}

// ApplySeasonalDiscounts rebaja los productos de temporada sin rebaja: 0.15 en meses lluviosos, 0.10 en secos.
func (p *Policy) ApplySeasonalDiscounts(ctx context.Context) (int, error) {
	today := p.Today()
	pct, seasonEnd := SeasonDiscount(today)
	applied := 0
	for _, prod := range p.catalog.All() {
		if !prod.Seasonal || prod.HasDiscount() {
			continue
		}
		if _, err := p.catalog.Update(ctx, prod.ID, entity.DiscountChange{Discount: pct}); err != nil {
			if err := p.skip(ctx, "rebaja de temporada", prod.ID, err); err != nil {
				return applied, err
			}
			continue
		}
		applied++
		p.record(ctx, entity.Rotation{ProductID: prod.ID, Start: today, End: seasonEnd, Type: entity.RotationSeasonal})
	}
	p.metrics.Discount(entity.RotationSeasonal, applied)
	return applied, nil
}

// ApplyDailyDiscounts pasada diaria: primero expiración, luego temporada (la expiración tiene prioridad).
func (p *Policy) ApplyDailyDiscounts(ctx context.Context, daysAhead int, pct decimal.Decimal) (int, error) {
	expiring, err := p.ApplyExpirationDiscounts(ctx, daysAhead, pct)
	if err != nil {
		return expiring, err
	}
	seasonal, err := p.ApplySeasonalDiscounts(ctx)
	return expiring + seasonal, err
}

// History ventanas de rebaja registradas para el producto.
func (p *Policy) History(ctx context.Context, productID int64) ([]entity.Rotation, error) {
	if p.history == nil {
		return nil, nil
	}
	return p.history.ListByProduct(ctx, productID)
}

// SeasonDiscount rebaja de temporada y último día de la estación a la que pertenece d.
func SeasonDiscount(d time.Time) (decimal.Decimal, time.Time) {
	y, m := d.Year(), d.Month()
	switch {
	case m >= time.May && m <= time.November:
		return WetSeasonDiscount, time.Date(y, time.November, 30, 0, 0, 0, 0, time.UTC)
	case m == time.December:
		return DrySeasonDiscount, time.Date(y+1, time.April, 30, 0, 0, 0, 0, time.UTC)
	default:
		return DrySeasonDiscount, time.Date(y, time.April, 30, 0, 0, 0, 0, time.UTC)
	}
}

// skip registra un error recuperable y lo descarta; los demás se devuelven al llamador.
func (p *Policy) skip(ctx context.Context, op string, productID int64, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if domain.IsRecoverable(err) {
		p.log.Warn().Err(err).Str("op", op).Int64("product_id", productID).Msg("producto omitido")
		return nil
	}
	return err
}

// record el historial es auxiliar: un fallo se registra y no afecta la rebaja ya aplicada.
func (p *Policy) record(ctx context.Context, r entity.Rotation) {
	if p.history == nil {
		return
	}
	if err := p.history.Record(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
		p.log.Warn().Err(err).Int64("product_id", r.ProductID).Str("tipo", r.Type).Msg("no se pudo registrar la rotación")
	}
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
