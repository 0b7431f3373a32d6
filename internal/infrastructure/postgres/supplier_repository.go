package postgres

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO proveedores (nombre, contacto, direccion) VALUES ($1, $2, $3) RETURNING id`,
		s.Name, s.Contact, s.Address,
	).Scan(&s.ID)
	return mapError("insert supplier", err)
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE proveedores SET nombre = $2, contacto = $3, direccion = $4 WHERE id = $1`,
		s.ID, s.Name, s.Contact, s.Address,
	)
	if err != nil {
		return mapError("update supplier", err)
	}
	return requireRow(tag, "proveedor", s.ID)
}

// Delete productos y transacciones quedan con proveedor_id NULL (ON DELETE SET NULL).
func (r *SupplierRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM proveedores WHERE id = $1`, id)
	if err != nil {
		return mapError("delete supplier", err)
	}
	return requireRow(tag, "proveedor", id)
}

func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, `SELECT id, nombre, contacto, direccion FROM proveedores ORDER BY id`)
	if err != nil {
		return nil, mapError("list suppliers", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact, &s.Address); err != nil {
			return nil, mapError("scan supplier", err)
		}
		list = append(list, &s)
	}
	return list, mapError("list suppliers", rows.Err())
}
