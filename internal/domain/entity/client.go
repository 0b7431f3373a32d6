package entity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/pkg/validator"
)

// Tipos de cliente.
const (
	ClientTypeRetail    = "minorista"
	ClientTypeWholesale = "mayorista"
	ClientTypeInternal  = "interno" // pseudo-cliente de inventario para compras a proveedores
)

// Client representa un cliente de la tienda.
type Client struct {
	ID      int64
	Name    string
	Contact string
	Address string
	Type    string
	Credit  decimal.Decimal
}

// Clone devuelve una copia del cliente.
func (c *Client) Clone() *Client {
	cp := *c
	return &cp
}

// IsInternal indica si es el pseudo-cliente de inventario.
func (c *Client) IsInternal() bool { return c.Type == ClientTypeInternal }

// NewClient datos de alta de un cliente.
type NewClient struct {
	Name    string `validate:"required"`
	Contact string
	Address string
	Type    string          `validate:"required,oneof=minorista mayorista interno"`
	Credit  decimal.Decimal `validate:"gte=0"`
}

// Build valida la entrada y construye el cliente.
func (n NewClient) Build() (*Client, error) {
	if errs := validator.ValidateStruct(n); len(errs) > 0 {
		return nil, fmt.Errorf("%w: cliente: %s", domain.ErrInvalidInput, validator.Join(errs))
	}
	return &Client{Name: n.Name, Contact: n.Contact, Address: n.Address, Type: n.Type, Credit: n.Credit}, nil
}

// ClientChange actualización tipada de un cliente.
type ClientChange interface {
	applyToClient(c *Client) error
}

// ClientContactChange actualiza nombre, contacto y dirección; los vacíos no se modifican.
type ClientContactChange struct {
	Name    string
	Contact string
	Address string
}

func (ch ClientContactChange) applyToClient(c *Client) error {
	if ch.Name != "" {
		c.Name = ch.Name
	}
	if ch.Contact != "" {
		c.Contact = ch.Contact
	}
	if ch.Address != "" {
		c.Address = ch.Address
	}
	return nil
}

// CreditChange fija el límite de crédito.
type CreditChange struct{ Credit decimal.Decimal }

func (ch CreditChange) applyToClient(c *Client) error {
	if ch.Credit.IsNegative() {
		return fmt.Errorf("%w: crédito negativo", domain.ErrInvalidInput)
	}
	c.Credit = ch.Credit
	return nil
}

// ApplyClientChanges aplica los cambios sobre una copia de c.
func ApplyClientChanges(c *Client, changes ...ClientChange) (*Client, error) {
	next := c.Clone()
	for _, ch := range changes {
		if ch == nil {
			continue
		}
		if err := ch.applyToClient(next); err != nil {
			return nil, err
		}
	}
	return next, nil
}
