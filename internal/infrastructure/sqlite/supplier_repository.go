package sqlite

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores sobre SQLite.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO proveedores (nombre, contacto, direccion) VALUES (?, ?, ?) RETURNING id`,
		s.Name, s.Contact, s.Address,
	).Scan(&s.ID)
	if err != nil {
		return mapError("insertar proveedor", err)
	}
	return nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE proveedores SET nombre = ?, contacto = ?, direccion = ? WHERE id = ?`,
		s.Name, s.Contact, s.Address, s.ID,
	)
	if err != nil {
		return mapError("actualizar proveedor", err)
	}
	return requireRow(res, "proveedor", s.ID)
}

// Delete productos y transacciones quedan con proveedor_id NULL (ON DELETE SET NULL).
func (r *SupplierRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM proveedores WHERE id = ?`, id)
	if err != nil {
		return mapError("eliminar proveedor", err)
	}
	return requireRow(res, "proveedor", id)
}

func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, nombre, contacto, direccion FROM proveedores ORDER BY id`)
	if err != nil {
		return nil, mapError("listar proveedores", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact, &s.Address); err != nil {
			return nil, mapError("leer proveedor", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("listar proveedores", err)
	}
	return list, nil
}
