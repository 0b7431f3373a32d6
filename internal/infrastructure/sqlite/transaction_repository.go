package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo transacciones sobre SQLite. Las líneas se guardan como JSON en la columna productos.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador.
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	items, err := entity.MarshalItems(t.Items)
	if err != nil {
		return fmt.Errorf("serializar productos: %w", err)
	}
	err = r.q.QueryRowContext(ctx, `
		INSERT INTO transacciones (cliente_id, proveedor_id, productos, total, fecha, tipo_pago, estado)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		t.ClientID, nullID(t.SupplierID), string(items), t.Total.String(), entity.FormatDate(t.Date), t.PaymentType, t.Status,
	).Scan(&t.ID)
	if err != nil {
		return mapError("insertar transacción", err)
	}
	return nil
}

func (r *TransactionRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.q.ExecContext(ctx, `UPDATE transacciones SET estado = ? WHERE id = ?`, status, id)
	if err != nil {
		return mapError("actualizar estado", err)
	}
	return requireRow(res, "transacción", id)
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM transacciones WHERE id = ?`, id)
	if err != nil {
		return mapError("eliminar transacción", err)
	}
	return requireRow(res, "transacción", id)
}

func (r *TransactionRepo) List(ctx context.Context) ([]*entity.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, cliente_id, proveedor_id, productos, total, fecha, tipo_pago, estado
		FROM transacciones ORDER BY id`)
	if err != nil {
		return nil, mapError("listar transacciones", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		var (
			t                  entity.Transaction
			supplierID         sql.NullInt64
			items, total, date string
		)
		if err := rows.Scan(&t.ID, &t.ClientID, &supplierID, &items, &total, &date, &t.PaymentType, &t.Status); err != nil {
			return nil, mapError("leer transacción", err)
		}
		if t.Items, err = entity.UnmarshalItems([]byte(items)); err != nil {
			return nil, fmt.Errorf("transacción %d: %w", t.ID, err)
		}
		if t.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("transacción %d: total %q: %w", t.ID, total, err)
		}
		if t.Date, err = entity.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transacción %d: %w", t.ID, err)
		}
		t.SupplierID = idPtr(supplierID)
		list = append(list, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("listar transacciones", err)
	}
	return list, nil
}
