package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/pkg/validator"
)

// Estados de una transacción.
const (
	StatusPending   = "pendiente"
	StatusCompleted = "completada"
	StatusCancelled = "cancelada"
)

// ValidStatus indica si s es un estado conocido.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

// LineItem referencia a un producto dentro de una transacción.
// Quantity 0 equivale a una unidad (las ventas antiguas solo guardaban el ID).
type LineItem struct {
	ProductID int64           `json:"id"`
	Quantity  int             `json:"cantidad,omitempty"`
	UnitPrice decimal.Decimal `json:"precio"`
}

// Units devuelve la cantidad efectiva de la línea.
func (l LineItem) Units() int {
	if l.Quantity <= 0 {
		return 1
	}
	return l.Quantity
}

// Subtotal precio unitario por cantidad.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Units())))
}

// UnmarshalJSON acepta tanto {"id":1,"cantidad":2,"precio":"1.5"} como un ID desnudo (1).
func (l *LineItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("línea de transacción: %w", err)
		}
		*l = LineItem{ProductID: id}
		return nil
	}
	type plain LineItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = LineItem(p)
	return nil
}

// Transaction representa una venta (SupplierID nil) o una compra a proveedor.
type Transaction struct {
	ID          int64
	ClientID    int64
	SupplierID  *int64
	Items       []LineItem
	Total       decimal.Decimal
	Date        time.Time
	PaymentType string
	Status      string
}

// Clone devuelve una copia independiente.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.Items = append([]LineItem(nil), t.Items...)
	if t.SupplierID != nil {
		id := *t.SupplierID
		c.SupplierID = &id
	}
	return &c
}

// IsPurchase indica si la transacción es una compra a proveedor.
func (t *Transaction) IsPurchase() bool { return t.SupplierID != nil }

// References indica si la transacción incluye el producto.
func (t *Transaction) References(productID int64) bool {
	for _, it := range t.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// NewTransaction datos de alta de una transacción. El total se calcula de las líneas.
type NewTransaction struct {
	ClientID    int64      `validate:"gt=0"`
	SupplierID  *int64
	Items       []LineItem `validate:"min=1,dive"`
	Date        time.Time  `validate:"required"`
	PaymentType string     `validate:"required"`
	Status      string     `validate:"required,oneof=pendiente completada cancelada"`
}

// Build valida la entrada y construye la transacción con Total = Σ líneas.
func (n NewTransaction) Build() (*Transaction, error) {
	if errs := validator.ValidateStruct(n); len(errs) > 0 {
		return nil, fmt.Errorf("%w: transacción: %s", domain.ErrInvalidInput, validator.Join(errs))
	}
	total := decimal.Zero
	for _, it := range n.Items {
		if it.UnitPrice.IsNegative() || it.Quantity < 0 {
			return nil, fmt.Errorf("%w: línea con precio o cantidad negativa (producto %d)", domain.ErrInvalidInput, it.ProductID)
		}
		total = total.Add(it.Subtotal())
	}
	t := &Transaction{
		ClientID:    n.ClientID,
		Items:       append([]LineItem(nil), n.Items...),
		Total:       total.Round(2),
		Date:        DateOf(n.Date),
		PaymentType: n.PaymentType,
		Status:      n.Status,
	}
	if n.SupplierID != nil {
		id := *n.SupplierID
		t.SupplierID = &id
	}
	return t, nil
}

// MarshalItems serializa las líneas para la columna de productos.
func MarshalItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// UnmarshalItems lee la columna de productos.
func UnmarshalItems(data []byte) ([]LineItem, error) {
	var items []LineItem
	if len(bytes.TrimSpace(data)) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decodificar productos: %w", err)
	}
	return items, nil
}
