package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// TransactionListRequest filtros de GET /api/transactions. Fechas en formato YYYY-MM-DD.
type TransactionListRequest struct {
	From     string `query:"from"`
	To       string `query:"to"`
	ClientID int64  `query:"client_id" validate:"min=0"`
	Status   string `query:"status" validate:"omitempty,oneof=pendiente completada cancelada"`
}

// LineItemResponse línea de una transacción.
type LineItemResponse struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// TransactionResponse salida de una transacción.
type TransactionResponse struct {
	ID          int64              `json:"id"`
	ClientID    int64              `json:"client_id"`
	SupplierID  *int64             `json:"supplier_id,omitempty"`
	Items       []LineItemResponse `json:"items"`
	Total       decimal.Decimal    `json:"total"`
	Date        string             `json:"date"`
	PaymentType string             `json:"payment_type"`
	Status      string             `json:"status"`
}

// TransactionFromEntity convierte una transacción del libro.
func TransactionFromEntity(t *entity.Transaction) TransactionResponse {
	items := make([]LineItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, LineItemResponse{ProductID: it.ProductID, Quantity: it.Units(), UnitPrice: it.UnitPrice})
	}
	return TransactionResponse{
		ID:          t.ID,
		ClientID:    t.ClientID,
		SupplierID:  t.SupplierID,
		Items:       items,
		Total:       t.Total,
		Date:        entity.FormatDate(t.Date),
		PaymentType: t.PaymentType,
		Status:      t.Status,
	}
}

// MovementListRequest filtros de GET /api/movements.
type MovementListRequest struct {
	TransactionID int64  `query:"transaction_id" validate:"min=0"`
	Type          string `query:"type" validate:"omitempty,oneof=compra venta"`
	From          string `query:"from"`
	To            string `query:"to"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID            int64  `json:"id"`
	TransactionID int64  `json:"transaction_id"`
	Date          string `json:"date"`
	Type          string `json:"type"`
}

// MovementFromEntity convierte un movimiento del registro.
func MovementFromEntity(m *entity.Movement) MovementResponse {
	return MovementResponse{ID: m.ID, TransactionID: m.TransactionID, Date: entity.FormatDate(m.Date), Type: m.Type}
}
