package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// ProductListRequest filtros de GET /api/products.
type ProductListRequest struct {
	Name     string `query:"name"`
	Category string `query:"category"`
	PageRequest
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	Price            decimal.Decimal `json:"price"`
	EffectivePrice   decimal.Decimal `json:"effective_price"`
	Discount         decimal.Decimal `json:"discount"`
	Stock            int             `json:"stock"`
	ExpirationDate   *string         `json:"expiration_date,omitempty"`
	Seasonal         bool            `json:"seasonal"`
	SupplierID       *int64          `json:"supplier_id,omitempty"`
	ReorderThreshold int             `json:"reorder_threshold,omitempty"`
	StockTarget      int             `json:"stock_target,omitempty"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductFromEntity convierte un producto del catálogo.
func ProductFromEntity(p *entity.Product) ProductResponse {
	out := ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		Price:            p.Price,
		EffectivePrice:   p.EffectivePrice(),
		Discount:         p.Discount,
		Stock:            p.Stock,
		Seasonal:         p.Seasonal,
		SupplierID:       p.SupplierID,
		ReorderThreshold: p.ReorderThreshold,
		StockTarget:      p.StockTarget,
	}
	if p.ExpirationDate != nil {
		d := entity.FormatDate(*p.ExpirationDate)
		out.ExpirationDate = &d
	}
	return out
}

// ProductsFromEntities convierte una lista de productos.
func ProductsFromEntities(ps []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProductFromEntity(p))
	}
	return out
}
