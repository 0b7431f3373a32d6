package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/application/pricing"
)

// ExpirationDiscountRequest body de POST /api/rotation/expiration-discounts.
// Los campos ausentes toman los valores de la política configurada.
type ExpirationDiscountRequest struct {
	DaysAhead *int             `json:"days_ahead" validate:"omitempty,min=0"`
	Discount  *decimal.Decimal `json:"discount"`
}

// DiscountRunResponse resultado de una pasada de rebajas.
type DiscountRunResponse struct {
	Applied    int               `json:"applied"`
	Discounted []ProductResponse `json:"discounted"`
}

// AdjustPricingRequest body de POST /api/pricing/adjust. Ventana en formato YYYY-MM-DD.
type AdjustPricingRequest struct {
	From         string           `json:"from" validate:"required"`
	To           string           `json:"to" validate:"required"`
	MarginTarget *decimal.Decimal `json:"margin_target"`
	MinRotation  *int             `json:"min_rotation" validate:"omitempty,min=0"`
}

// AdjustmentNoteResponse regla disparada para un producto.
type AdjustmentNoteResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Rule        string `json:"rule"`
	Message     string `json:"message"`
}

// AdjustPricingResponse notas del ajuste.
type AdjustPricingResponse struct {
	Notes []AdjustmentNoteResponse `json:"notes"`
}

// NotesFromAdjustments convierte las notas del ajustador.
func NotesFromAdjustments(notes []pricing.AdjustmentNote) []AdjustmentNoteResponse {
	out := make([]AdjustmentNoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, AdjustmentNoteResponse{ProductID: n.ProductID, ProductName: n.ProductName, Rule: n.Rule, Message: n.Message})
	}
	return out
}
