package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo transacciones sobre PostgreSQL; las líneas van en la columna JSONB productos.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	items, err := entity.MarshalItems(t.Items)
	if err != nil {
		return fmt.Errorf("serializar productos: %w", err)
	}
	err = r.q.QueryRow(ctx, `
		INSERT INTO transacciones (cliente_id, proveedor_id, productos, total, fecha, tipo_pago, estado)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		t.ClientID, t.SupplierID, items, t.Total, t.Date, t.PaymentType, t.Status,
	).Scan(&t.ID)
	return mapError("insert transaction", err)
}

func (r *TransactionRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE transacciones SET estado = $2 WHERE id = $1`, id, status)
	if err != nil {
		return mapError("update transaction status", err)
	}
	return requireRow(tag, "transacción", id)
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM transacciones WHERE id = $1`, id)
	if err != nil {
		return mapError("delete transaction", err)
	}
	return requireRow(tag, "transacción", id)
}

func (r *TransactionRepo) List(ctx context.Context) ([]*entity.Transaction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, cliente_id, proveedor_id, productos, total, fecha, tipo_pago, estado
		FROM transacciones ORDER BY id`)
	if err != nil {
		return nil, mapError("list transactions", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		var (
			t     entity.Transaction
			items []byte
		)
		if err := rows.Scan(&t.ID, &t.ClientID, &t.SupplierID, &items, &t.Total, &t.Date, &t.PaymentType, &t.Status); err != nil {
			return nil, mapError("scan transaction", err)
		}
		if t.Items, err = entity.UnmarshalItems(items); err != nil {
			return nil, fmt.Errorf("transacción %d: %w", t.ID, err)
		}
		t.Date = entity.DateOf(t.Date)
		list = append(list, &t)
	}
	return list, mapError("list transactions", rows.Err())
}
