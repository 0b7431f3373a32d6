package postgres

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo movimientos sobre PostgreSQL.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO movimientos (transaccion_id, fecha, tipo) VALUES ($1, $2, $3) RETURNING id`,
		m.TransactionID, m.Date, m.Type,
	).Scan(&m.ID)
	return mapError("insert movement", err)
}

func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movimientos WHERE id = $1`, id)
	if err != nil {
		return mapError("delete movement", err)
	}
	return requireRow(tag, "movimiento", id)
}

func (r *MovementRepo) List(ctx context.Context) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, `SELECT id, transaccion_id, fecha, tipo FROM movimientos ORDER BY id`)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.Date, &m.Type); err != nil {
			return nil, mapError("scan movement", err)
		}
		m.Date = entity.DateOf(m.Date)
		list = append(list, &m)
	}
	return list, mapError("list movements", rows.Err())
}
