package repository

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// ClientRepository puerto de persistencia de clientes.
// Delete elimina en cascada las transacciones del cliente y sus movimientos.
type ClientRepository interface {
	Create(ctx context.Context, c *entity.Client) error
	Update(ctx context.Context, c *entity.Client) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*entity.Client, error)
}
