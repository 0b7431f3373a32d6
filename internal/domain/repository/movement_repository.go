package repository

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// MovementRepository puerto de persistencia del registro de movimientos.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*entity.Movement, error)
}
