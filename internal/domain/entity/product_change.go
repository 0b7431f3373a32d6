package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/domain"
)

// ProductChange es una actualización tipada de un producto. El conjunto es cerrado:
// solo las variantes de este paquete implementan la interfaz.
type ProductChange interface {
	applyTo(p *Product) error
	String() string
}

// PriceChange fija el precio unitario.
type PriceChange struct{ Price decimal.Decimal }

func (c PriceChange) applyTo(p *Product) error {
	if c.Price.IsNegative() {
		return fmt.Errorf("%w: precio negativo %s", domain.ErrInvalidInput, c.Price)
	}
	p.Price = c.Price
	return nil
}

func (c PriceChange) String() string { return "precio=" + c.Price.StringFixed(2) }

// StockChange fija la existencia.
type StockChange struct{ Stock int }

func (c StockChange) applyTo(p *Product) error {
	if c.Stock < 0 {
		return fmt.Errorf("%w: stock negativo %d", domain.ErrInvalidInput, c.Stock)
	}
	p.Stock = c.Stock
	return nil
}

func (c StockChange) String() string { return fmt.Sprintf("stock=%d", c.Stock) }

// DiscountChange fija la fracción de rebaja.
type DiscountChange struct{ Discount decimal.Decimal }

func (c DiscountChange) applyTo(p *Product) error {
	if c.Discount.IsNegative() || c.Discount.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: rebaja fuera de [0,1]: %s", domain.ErrInvalidInput, c.Discount)
	}
	p.Discount = c.Discount
	return nil
}

func (c DiscountChange) String() string { return "rebaja=" + c.Discount.String() }

// SeasonalChange marca o desmarca el producto como de temporada.
type SeasonalChange struct{ Seasonal bool }

func (c SeasonalChange) applyTo(p *Product) error {
	p.Seasonal = c.Seasonal
	return nil
}

func (c SeasonalChange) String() string { return fmt.Sprintf("temporada=%t", c.Seasonal) }

// DetailsChange actualiza datos descriptivos; los campos vacíos no se modifican.
type DetailsChange struct {
	Name        string
	Description string
	Category    string
}

func (c DetailsChange) applyTo(p *Product) error {
	if c.Name != "" {
		p.Name = c.Name
	}
	if c.Description != "" {
		p.Description = c.Description
	}
	if c.Category != "" {
		p.Category = c.Category
	}
	return nil
}

func (c DetailsChange) String() string {
	return fmt.Sprintf("detalles(nombre=%q, categoria=%q)", c.Name, c.Category)
}

// ExpirationChange fija (o borra con nil) la fecha de expiración.
type ExpirationChange struct{ Date *time.Time }

func (c ExpirationChange) applyTo(p *Product) error {
	if c.Date == nil {
		p.ExpirationDate = nil
		return nil
	}
	d := DateOf(*c.Date)
	p.ExpirationDate = &d
	return nil
}

func (c ExpirationChange) String() string {
	if c.Date == nil {
		return "expiracion=nil"
	}
	return "expiracion=" + FormatDate(*c.Date)
}

// SupplierRefChange asigna (o borra con nil) el proveedor del producto.
type SupplierRefChange struct{ SupplierID *int64 }

func (c SupplierRefChange) applyTo(p *Product) error {
	if c.SupplierID == nil {
		p.SupplierID = nil
		return nil
	}
	id := *c.SupplierID
	p.SupplierID = &id
	return nil
}

func (c SupplierRefChange) String() string {
	if c.SupplierID == nil {
		return "proveedor=nil"
	}
	return fmt.Sprintf("proveedor=%d", *c.SupplierID)
}

// StockPolicyChange fija el umbral de reorden y el objetivo de stock propios del producto.
type StockPolicyChange struct {
	ReorderThreshold int
	StockTarget      int
}

func (c StockPolicyChange) applyTo(p *Product) error {
	if c.ReorderThreshold < 0 || c.StockTarget < 0 {
		return fmt.Errorf("%w: política de stock negativa", domain.ErrInvalidInput)
	}
	p.ReorderThreshold = c.ReorderThreshold
	p.StockTarget = c.StockTarget
	return nil
}

func (c StockPolicyChange) String() string {
	return fmt.Sprintf("umbral=%d objetivo=%d", c.ReorderThreshold, c.StockTarget)
}

// ApplyProductChanges aplica los cambios sobre una copia de p; p no se modifica.
func ApplyProductChanges(p *Product, changes ...ProductChange) (*Product, error) {
	next := p.Clone()
	for _, c := range changes {
		if c == nil {
			continue
		}
		if err := c.applyTo(next); err != nil {
			return nil, err
		}
	}
	return next, nil
}
