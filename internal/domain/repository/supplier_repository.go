package repository

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// SupplierRepository puerto de persistencia de proveedores.
// Delete deja en NULL la referencia al proveedor en productos y transacciones.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	Update(ctx context.Context, s *entity.Supplier) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*entity.Supplier, error)
}
