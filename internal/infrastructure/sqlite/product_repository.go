package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos sobre SQLite. Montos como TEXT decimal y fechas como TEXT ISO.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar *sql.DB o *sql.Tx.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, nombre, descripcion, categoria, precio, stock, fecha_expiracion, temporada, rebaja, proveedor_id, umbral_reorden, stock_objetivo`

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO productos (nombre, descripcion, categoria, precio, stock, fecha_expiracion, temporada, rebaja, proveedor_id, umbral_reorden, stock_objetivo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	err := r.q.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Category, p.Price.String(), p.Stock, nullDate(p.ExpirationDate),
		p.Seasonal, p.Discount.String(), nullID(p.SupplierID), p.ReorderThreshold, p.StockTarget,
	).Scan(&p.ID)
	if err != nil {
		return mapError("insertar producto", err)
	}
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE productos SET nombre = ?, descripcion = ?, categoria = ?, precio = ?, stock = ?, fecha_expiracion = ?,
			temporada = ?, rebaja = ?, proveedor_id = ?, umbral_reorden = ?, stock_objetivo = ?
		WHERE id = ?`
	res, err := r.q.ExecContext(ctx, query,
		p.Name, p.Description, p.Category, p.Price.String(), p.Stock, nullDate(p.ExpirationDate),
		p.Seasonal, p.Discount.String(), nullID(p.SupplierID), p.ReorderThreshold, p.StockTarget, p.ID,
	)
	if err != nil {
		return mapError("actualizar producto", err)
	}
	return requireRow(res, "producto", p.ID)
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM productos WHERE id = ?`, id)
	if err != nil {
		return mapError("eliminar producto", err)
	}
	return requireRow(res, "producto", id)
}

func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+productColumns+` FROM productos ORDER BY id`)
	if err != nil {
		return nil, mapError("listar productos", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var (
			p               entity.Product
			price, discount string
			expiration      sql.NullString
			supplierID      sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &price, &p.Stock, &expiration,
			&p.Seasonal, &discount, &supplierID, &p.ReorderThreshold, &p.StockTarget); err != nil {
			return nil, mapError("leer producto", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("producto %d: precio %q: %w", p.ID, price, err)
		}
		if p.Discount, err = decimal.NewFromString(discount); err != nil {
			return nil, fmt.Errorf("producto %d: rebaja %q: %w", p.ID, discount, err)
		}
		p.ExpirationDate = parseNullDate(expiration)
		p.SupplierID = idPtr(supplierID)
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("listar productos", err)
	}
	return list, nil
}

func nullDate(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: entity.FormatDate(*d), Valid: true}
}

// parseNullDate fechas ilegibles se tratan como ausentes, igual que las vacías.
func parseNullDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	d, err := entity.ParseDate(s.String)
	if err != nil {
		return nil
	}
	return &d
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	id := n.Int64
	return &id
}
