package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo clientes sobre SQLite.
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador.
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO clientes (nombre, contacto, direccion, tipo_cliente, credito)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		c.Name, c.Contact, c.Address, c.Type, c.Credit.String(),
	).Scan(&c.ID)
	if err != nil {
		return mapError("insertar cliente", err)
	}
	return nil
}

func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE clientes SET nombre = ?, contacto = ?, direccion = ?, tipo_cliente = ?, credito = ?
		WHERE id = ?`,
		c.Name, c.Contact, c.Address, c.Type, c.Credit.String(), c.ID,
	)
	if err != nil {
		return mapError("actualizar cliente", err)
	}
	return requireRow(res, "cliente", c.ID)
}

// Delete la cascada a transacciones y movimientos la resuelven las claves foráneas.
func (r *ClientRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM clientes WHERE id = ?`, id)
	if err != nil {
		return mapError("eliminar cliente", err)
	}
	return requireRow(res, "cliente", id)
}

func (r *ClientRepo) List(ctx context.Context) ([]*entity.Client, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, nombre, contacto, direccion, tipo_cliente, credito FROM clientes ORDER BY id`)
	if err != nil {
		return nil, mapError("listar clientes", err)
	}
	defer rows.Close()
	var list []*entity.Client
	for rows.Next() {
		var (
			c      entity.Client
			credit string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Contact, &c.Address, &c.Type, &credit); err != nil {
			return nil, mapError("leer cliente", err)
		}
		if c.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("cliente %d: crédito %q: %w", c.ID, credit, err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("listar clientes", err)
	}
	return list, nil
}
