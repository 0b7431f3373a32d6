package entity

import (
	"fmt"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/pkg/validator"
)

// Supplier representa un proveedor.
type Supplier struct {
	ID      int64
	Name    string
	Contact string
	Address string
}

// Clone devuelve una copia del proveedor.
func (s *Supplier) Clone() *Supplier {
	cp := *s
	return &cp
}

// NewSupplier datos de alta de un proveedor.
type NewSupplier struct {
	Name    string `validate:"required"`
	Contact string
	Address string
}

// Build valida la entrada y construye el proveedor.
func (n NewSupplier) Build() (*Supplier, error) {
	if errs := validator.ValidateStruct(n); len(errs) > 0 {
		return nil, fmt.Errorf("%w: proveedor: %s", domain.ErrInvalidInput, validator.Join(errs))
	}
	return &Supplier{Name: n.Name, Contact: n.Contact, Address: n.Address}, nil
}

// SupplierContactChange actualiza nombre, contacto y dirección; los vacíos no se modifican.
type SupplierContactChange struct {
	Name    string
	Contact string
	Address string
}

// Apply devuelve una copia de s con el cambio aplicado.
func (ch SupplierContactChange) Apply(s *Supplier) *Supplier {
	next := s.Clone()
	if ch.Name != "" {
		next.Name = ch.Name
	}
	if ch.Contact != "" {
		next.Contact = ch.Contact
	}
	if ch.Address != "" {
		next.Address = ch.Address
	}
	return next
}
