package repository

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Create asigna p.ID; Update y Delete devuelven domain.ErrNotFound si el ID no existe.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*entity.Product, error)
}
