package postgres

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo clientes sobre PostgreSQL.
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO clientes (nombre, contacto, direccion, tipo_cliente, credito)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		c.Name, c.Contact, c.Address, c.Type, c.Credit,
	).Scan(&c.ID)
	return mapError("insert client", err)
}

func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE clientes SET nombre = $2, contacto = $3, direccion = $4, tipo_cliente = $5, credito = $6
		WHERE id = $1`,
		c.ID, c.Name, c.Contact, c.Address, c.Type, c.Credit,
	)
	if err != nil {
		return mapError("update client", err)
	}
	return requireRow(tag, "cliente", c.ID)
}

// Delete transacciones y movimientos del cliente se borran por ON DELETE CASCADE.
func (r *ClientRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		return mapError("delete client", err)
	}
	return requireRow(tag, "cliente", id)
}

func (r *ClientRepo) List(ctx context.Context) ([]*entity.Client, error) {
	rows, err := r.q.Query(ctx, `SELECT id, nombre, contacto, direccion, tipo_cliente, credito FROM clientes ORDER BY id`)
	if err != nil {
		return nil, mapError("list clients", err)
	}
	defer rows.Close()
	var list []*entity.Client
	for rows.Next() {
		var c entity.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Contact, &c.Address, &c.Type, &c.Credit); err != nil {
			return nil, mapError("scan client", err)
		}
		list = append(list, &c)
	}
	return list, mapError("list clients", rows.Err())
}
