// Package reorder repone stock después de cada venta cuando el producto queda bajo el umbral.
package reorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/infrastructure/metrics"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// ErrRestock la venta quedó aplicada pero la reposición posterior falló.
var ErrRestock = errors.New("reposición fallida tras la venta")

// Thresholds valores globales de la política de stock; cada producto puede sobrescribirlos.
type Thresholds struct {
	StockThreshold int // reponer cuando stock < StockThreshold
	StockTarget    int // nivel al que se repone
}

// For umbral y objetivo efectivos del producto.
func (t Thresholds) For(p *entity.Product) (threshold, target int) {
	threshold, target = t.StockThreshold, t.StockTarget
	if p.ReorderThreshold > 0 {
		threshold = p.ReorderThreshold
	}
	if p.StockTarget > 0 {
		target = p.StockTarget
	}
	return threshold, target
}

// SaleLine unidades vendidas de un producto.
type SaleLine struct {
	ProductID int64
	Quantity  int
}

// Restock resultado de una reposición. Transaction o Movement quedan nil si su registro falló.
type Restock struct {
	Product     *entity.Product
	Supplier    *entity.Supplier
	Quantity    int
	Transaction *entity.Transaction
	Movement    *entity.Movement
}

// Controller reabastecimiento automático contra el proveedor de la categoría.
type Controller struct {
	stores     *store.Stores
	thresholds Thresholds
	log        *logger.Logger
	metrics    *metrics.Metrics

	mu         sync.RWMutex
	byCategory map[string]int64 // categoría normalizada -> proveedor
}

// NewController construye el controlador. m puede ser nil.
func NewController(stores *store.Stores, thresholds Thresholds, log *logger.Logger, m *metrics.Metrics) *Controller {
	return &Controller{
		stores:     stores,
		thresholds: thresholds,
		log:        log.Component("reabastecimiento"),
		metrics:    m,
		byCategory: make(map[string]int64),
	}
}

// Thresholds valores globales configurados.
func (c *Controller) Thresholds() Thresholds { return c.thresholds }

// AssignCategory declara que supplierID abastece la categoría.
func (c *Controller) AssignCategory(category string, supplierID int64) error {
	if _, err := c.stores.Suppliers.Get(supplierID); err != nil {
		return err
	}
	c.mu.Lock()
	c.byCategory[cases.Fold().String(category)] = supplierID
	c.mu.Unlock()
	return nil
}

// SelectSupplier proveedor del producto si existe; si no, el asignado a su categoría.
// Sin ninguno de los dos devuelve domain.ErrNotFound.
func (c *Controller) SelectSupplier(p *entity.Product) (*entity.Supplier, error) {
	if p.SupplierID != nil {
		if s, err := c.stores.Suppliers.Get(*p.SupplierID); err == nil {
			return s, nil
		}
	}
	c.mu.RLock()
	id, ok := c.byCategory[cases.Fold().String(p.Category)]
	c.mu.RUnlock()
	if ok {
		if s, err := c.stores.Suppliers.Get(id); err == nil {
			return s, nil
		}
	}
	return nil, fmt.Errorf("proveedor para %q (categoría %q): %w", p.Name, p.Category, domain.ErrNotFound)
}

// Sell descuenta las unidades vendidas y ejecuta AfterSale.
// Stock insuficiente es un error de validación y no modifica nada. Si la venta se aplicó y falla
// la reposición, el error envuelve ErrRestock además de la causa.
func (c *Controller) Sell(ctx context.Context, line SaleLine, date time.Time) (*Restock, error) {
	if line.Quantity <= 0 {
		return nil, fmt.Errorf("%w: cantidad vendida %d", domain.ErrInvalidInput, line.Quantity)
	}
	p, err := c.stores.Catalog.Get(line.ProductID)
	if err != nil {
		return nil, err
	}
	if p.Stock < line.Quantity {
		return nil, fmt.Errorf("%w: %w: producto %d tiene %d, se piden %d",
			domain.ErrInvalidInput, domain.ErrInsufficientStock, p.ID, p.Stock, line.Quantity)
	}
	if _, err := c.stores.Catalog.Update(ctx, p.ID, entity.StockChange{Stock: p.Stock - line.Quantity}); err != nil {
		return nil, err
	}
	r, err := c.AfterSale(ctx, p.ID, date)
	if err != nil {
		return r, fmt.Errorf("%w: %w", ErrRestock, err)
	}
	return r, nil
}

// AfterSale repone hasta el objetivo si el stock quedó bajo el umbral. Devuelve nil sin error
// cuando no hace falta reponer. El stock repuesto no se revierte si falla el registro de la
// compra o de su movimiento; en ese caso el error envuelve domain.ErrPartialFailure.
func (c *Controller) AfterSale(ctx context.Context, productID int64, date time.Time) (*Restock, error) {
	p, err := c.stores.Catalog.Get(productID)
	if err != nil {
		return nil, err
	}
	threshold, target := c.thresholds.For(p)
	if p.Stock >= threshold {
		return nil, nil
	}
	qty := max(0, target-p.Stock)
	if qty == 0 {
		return nil, nil
	}
	supplier, err := c.SelectSupplier(p)
	if err != nil {
		return nil, err
	}

	// 1. Stock
	updated, err := c.stores.Catalog.Update(ctx, p.ID, entity.StockChange{Stock: p.Stock + qty})
	if err != nil {
		return nil, err
	}
	r := &Restock{Product: updated, Supplier: supplier, Quantity: qty}
	c.metrics.Restock(qty)

	// 2. Compra a nombre del cliente interno
	internal, err := c.stores.Clients.EnsureInternal(ctx)
	if err != nil {
		return r, c.partial(p.ID, "cliente interno", err)
	}
	supplierID := supplier.ID
	tx, err := c.stores.Ledger.Register(ctx, entity.NewTransaction{
		ClientID:    internal.ID,
		SupplierID:  &supplierID,
		Items:       []entity.LineItem{{ProductID: p.ID, Quantity: qty, UnitPrice: p.Price}},
		Date:        date,
		PaymentType: "compra a proveedor " + supplier.Name,
		Status:      entity.StatusCompleted,
	})
	if err != nil {
		return r, c.partial(p.ID, "transacción de compra", err)
	}
	r.Transaction = tx

	// 3. Movimiento
	mov, err := c.stores.Movements.Register(ctx, entity.NewMovement{TransactionID: tx.ID, Date: date, Type: entity.MovementPurchase})
	if err != nil {
		return r, c.partial(p.ID, "movimiento de compra", err)
	}
	r.Movement = mov

	c.log.Info().Int64("product_id", p.ID).Int("cantidad", qty).Int64("supplier_id", supplier.ID).
		Str("total", tx.Total.StringFixed(2)).Msg("reabastecimiento registrado")
	return r, nil
}

func (c *Controller) partial(productID int64, step string, err error) error {
	c.log.Error().Err(err).Int64("product_id", productID).Str("paso", step).Msg("stock repuesto sin registro completo")
	return fmt.Errorf("%w: reposición de producto %d: %s: %w", domain.ErrPartialFailure, productID, step, err)
}
