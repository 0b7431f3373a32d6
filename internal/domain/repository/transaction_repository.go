package repository

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// TransactionRepository puerto de persistencia del libro de transacciones.
// Una transacción solo cambia de estado después de creada.
type TransactionRepository interface {
	Create(ctx context.Context, t *entity.Transaction) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*entity.Transaction, error)
}
