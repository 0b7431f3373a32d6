package postgres

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.RotationRepository = (*RotationRepo)(nil)

// RotationRepo historial de ventanas de rebaja sobre PostgreSQL.
type RotationRepo struct {
	q Querier
}

// NewRotationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRotationRepository(q Querier) *RotationRepo {
	return &RotationRepo{q: q}
}

func (r *RotationRepo) Record(ctx context.Context, rot entity.Rotation) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO rotaciones (producto_id, fecha_inicio, fecha_fin, tipo) VALUES ($1, $2, $3, $4)`,
		rot.ProductID, rot.Start, rot.End, rot.Type,
	)
	return mapError("insert rotation", err)
}

func (r *RotationRepo) ListByProduct(ctx context.Context, productID int64) ([]entity.Rotation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT producto_id, fecha_inicio, fecha_fin, tipo FROM rotaciones
		WHERE producto_id = $1 ORDER BY fecha_inicio, ctid`, productID)
	if err != nil {
		return nil, mapError("list rotations", err)
	}
	defer rows.Close()
	var list []entity.Rotation
	for rows.Next() {
		var rot entity.Rotation
		if err := rows.Scan(&rot.ProductID, &rot.Start, &rot.End, &rot.Type); err != nil {
			return nil, mapError("scan rotation", err)
		}
		rot.Start, rot.End = entity.DateOf(rot.Start), entity.DateOf(rot.End)
		list = append(list, rot)
	}
	return list, mapError("list rotations", rows.Err())
}
