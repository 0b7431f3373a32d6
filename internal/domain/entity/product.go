package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/pkg/validator"
)

// Product representa un producto del catálogo.
// Discount es la fracción de rebaja vigente en [0,1]; 0 = sin rebaja.
// ReorderThreshold y StockTarget en 0 significan "usar los valores globales de la política".
type Product struct {
	ID               int64
	Name             string
	Description      string
	Category         string
	Price            decimal.Decimal
	Stock            int
	ExpirationDate   *time.Time
	Seasonal         bool
	Discount         decimal.Decimal
	SupplierID       *int64
	ReorderThreshold int
	StockTarget      int
}

// Clone devuelve una copia independiente (incluye los punteros opcionales).
func (p *Product) Clone() *Product {
	c := *p
	if p.ExpirationDate != nil {
		d := *p.ExpirationDate
		c.ExpirationDate = &d
	}
	if p.SupplierID != nil {
		id := *p.SupplierID
		c.SupplierID = &id
	}
	return &c
}

// HasDiscount indica si el producto ya tiene una rebaja activa.
func (p *Product) HasDiscount() bool {
	return p.Discount.GreaterThan(decimal.Zero)
}

// EffectivePrice precio unitario con la rebaja aplicada, redondeado a 2 decimales.
func (p *Product) EffectivePrice() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(1).Sub(p.Discount)).Round(2)
}

// NewProduct datos de alta de un producto.
type NewProduct struct {
	Name             string          `validate:"required"`
	Description      string
	Category         string          `validate:"required"`
	Price            decimal.Decimal `validate:"gte=0"`
	Stock            int             `validate:"gte=0"`
	ExpirationDate   *time.Time
	Seasonal         bool
	Discount         decimal.Decimal `validate:"gte=0,lte=1"`
	SupplierID       *int64
	ReorderThreshold int `validate:"gte=0"`
	StockTarget      int `validate:"gte=0"`
}

// Build valida la entrada y construye el producto (sin ID; lo asigna la persistencia).
func (n NewProduct) Build() (*Product, error) {
	if errs := validator.ValidateStruct(n); len(errs) > 0 {
		return nil, fmt.Errorf("%w: producto: %s", domain.ErrInvalidInput, validator.Join(errs))
	}
	p := &Product{
		Name:             n.Name,
		Description:      n.Description,
		Category:         n.Category,
		Price:            n.Price,
		Stock:            n.Stock,
		Seasonal:         n.Seasonal,
		Discount:         n.Discount,
		ReorderThreshold: n.ReorderThreshold,
		StockTarget:      n.StockTarget,
	}
	if n.ExpirationDate != nil {
		d := DateOf(*n.ExpirationDate)
		p.ExpirationDate = &d
	}
	if n.SupplierID != nil {
		id := *n.SupplierID
		p.SupplierID = &id
	}
	return p, nil
}
