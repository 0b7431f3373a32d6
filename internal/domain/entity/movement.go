package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/pkg/validator"
)

// Tipos de movimiento físico de inventario.
const (
	MovementPurchase = "compra"
	MovementSale     = "venta"
)

// Movement registra el evento físico (compra o venta) asociado 1:1 a una transacción.
type Movement struct {
	ID            int64
	TransactionID int64
	Date          time.Time
	Type          string
}

// Clone devuelve una copia del movimiento.
func (m *Movement) Clone() *Movement {
	c := *m
	return &c
}

// NewMovement datos de alta de un movimiento.
type NewMovement struct {
	TransactionID int64     `validate:"gt=0"`
	Date          time.Time `validate:"required"`
	Type          string    `validate:"required,oneof=compra venta"`
}

// Build valida la entrada y construye el movimiento.
func (n NewMovement) Build() (*Movement, error) {
	if errs := validator.ValidateStruct(n); len(errs) > 0 {
		return nil, fmt.Errorf("%w: movimiento: %s", domain.ErrInvalidInput, validator.Join(errs))
	}
	return &Movement{TransactionID: n.TransactionID, Date: DateOf(n.Date), Type: n.Type}, nil
}
