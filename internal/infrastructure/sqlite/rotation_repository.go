package sqlite

import (
	"context"
	"fmt"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.RotationRepository = (*RotationRepo)(nil)

// RotationRepo historial de ventanas de rebaja sobre SQLite.
type RotationRepo struct {
	q Querier
}

// NewRotationRepository construye el adaptador.
func NewRotationRepository(q Querier) *RotationRepo {
	return &RotationRepo{q: q}
}

func (r *RotationRepo) Record(ctx context.Context, rot entity.Rotation) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO rotaciones (producto_id, fecha_inicio, fecha_fin, tipo) VALUES (?, ?, ?, ?)`,
		rot.ProductID, entity.FormatDate(rot.Start), entity.FormatDate(rot.End), rot.Type,
	)
	return mapError("registrar rotación", err)
}

func (r *RotationRepo) ListByProduct(ctx context.Context, productID int64) ([]entity.Rotation, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT producto_id, fecha_inicio, fecha_fin, tipo FROM rotaciones
		WHERE producto_id = ? ORDER BY rowid`, productID)
	if err != nil {
		return nil, mapError("listar rotaciones", err)
	}
	defer rows.Close()
	var list []entity.Rotation
	for rows.Next() {
		var (
			rot        entity.Rotation
			start, end string
		)
		if err := rows.Scan(&rot.ProductID, &start, &end, &rot.Type); err != nil {
			return nil, mapError("leer rotación", err)
		}
		if rot.Start, err = entity.ParseDate(start); err != nil {
			return nil, fmt.Errorf("rotación: %w", err)
		}
		if rot.End, err = entity.ParseDate(end); err != nil {
			return nil, fmt.Errorf("rotación: %w", err)
		}
		list = append(list, rot)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("listar rotaciones", err)
	}
	return list, nil
}
