package repository

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// RotationRepository historial de ventanas de rebaja por producto.
// Borrar un producto borra su historial.
type RotationRepository interface {
	Record(ctx context.Context, r entity.Rotation) error
	ListByProduct(ctx context.Context, productID int64) ([]entity.Rotation, error)
}
