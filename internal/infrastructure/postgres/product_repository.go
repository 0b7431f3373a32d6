package postgres

import (
	"context"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto y asigna p.ID.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO productos (nombre, descripcion, categoria, precio, stock, fecha_expiracion, temporada, rebaja, proveedor_id, umbral_reorden, stock_objetivo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		p.Name, p.Description, p.Category, p.Price, p.Stock, p.ExpirationDate,
		p.Seasonal, p.Discount, p.SupplierID, p.ReorderThreshold, p.StockTarget,
	).Scan(&p.ID)
	return mapError("insert product", err)
}

// Update reescribe todas las columnas del producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE productos SET nombre = $2, descripcion = $3, categoria = $4, precio = $5, stock = $6, fecha_expiracion = $7,
			temporada = $8, rebaja = $9, proveedor_id = $10, umbral_reorden = $11, stock_objetivo = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Category, p.Price, p.Stock, p.ExpirationDate,
		p.Seasonal, p.Discount, p.SupplierID, p.ReorderThreshold, p.StockTarget,
	)
	if err != nil {
		return mapError("update product", err)
	}
	return requireRow(tag, "producto", p.ID)
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		return mapError("delete product", err)
	}
	return requireRow(tag, "producto", id)
}

// List devuelve todos los productos en orden de alta.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	query := `
		SELECT id, nombre, descripcion, categoria, precio, stock, fecha_expiracion, temporada, rebaja, proveedor_id, umbral_reorden, stock_objetivo
		FROM productos ORDER BY id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &p.ExpirationDate,
			&p.Seasonal, &p.Discount, &p.SupplierID, &p.ReorderThreshold, &p.StockTarget); err != nil {
			return nil, mapError("scan product", err)
		}
		if p.ExpirationDate != nil {
			d := entity.DateOf(*p.ExpirationDate)
			p.ExpirationDate = &d
		}
		list = append(list, &p)
	}
	return list, mapError("list products", rows.Err())
}
