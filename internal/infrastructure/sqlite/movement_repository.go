package sqlite

import (
	"context"
	"fmt"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo movimientos sobre SQLite.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO movimientos (transaccion_id, fecha, tipo) VALUES (?, ?, ?) RETURNING id`,
		m.TransactionID, entity.FormatDate(m.Date), m.Type,
	).Scan(&m.ID)
	if err != nil {
		return mapError("insertar movimiento", err)
	}
	return nil
}

func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM movimientos WHERE id = ?`, id)
	if err != nil {
		return mapError("eliminar movimiento", err)
	}
	return requireRow(res, "movimiento", id)
}

func (r *MovementRepo) List(ctx context.Context) ([]*entity.Movement, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, transaccion_id, fecha, tipo FROM movimientos ORDER BY id`)
	if err != nil {
		return nil, mapError("listar movimientos", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var (
			m    entity.Movement
			date string
		)
		if err := rows.Scan(&m.ID, &m.TransactionID, &date, &m.Type); err != nil {
			return nil, mapError("leer movimiento", err)
		}
		if m.Date, err = entity.ParseDate(date); err != nil {
			return nil, fmt.Errorf("movimiento %d: %w", m.ID, err)
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("listar movimientos", err)
	}
	return list, nil
}
