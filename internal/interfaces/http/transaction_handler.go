package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abarroteria/internal/application/dto"
	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// TransactionHandler consultas sobre el libro de transacciones y el registro de movimientos.
type TransactionHandler struct {
	ledger    *store.Ledger
	movements *store.MovementLog
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(ledger *store.Ledger, movements *store.MovementLog) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, movements: movements}
}

// ListTransactions godoc
// @Summary      Listar transacciones
// @Tags         transactions
// @Produce      json
// @Param        from       query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        client_id  query  int     false  "Cliente"
// @Param        status     query  string  false  "Estado"
// @Success      200  {array}   dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	var in dto.TransactionListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if ok, err := validate(c, in); !ok {
		return err
	}
	from, to, err := dateRange(in.From, in.To)
	if err != nil {
		return respondError(c, err)
	}

	var txs []*entity.Transaction
	if from != nil {
		txs = h.ledger.QueryByDateRange(*from, *to)
	} else {
		txs = h.ledger.All()
	}
	out := make([]dto.TransactionResponse, 0, len(txs))
	for _, t := range txs {
		if in.ClientID != 0 && t.ClientID != in.ClientID {
			continue
		}
		if in.Status != "" && t.Status != in.Status {
			continue
		}
		out = append(out, dto.TransactionFromEntity(t))
	}
	return c.JSON(out)
}

// ListMovements GET /api/movements?transaction_id=&type=&from=&to=
func (h *TransactionHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if ok, err := validate(c, in); !ok {
		return err
	}
	from, to, err := dateRange(in.From, in.To)
	if err != nil {
		return respondError(c, err)
	}

	var ms []*entity.Movement
	if from != nil {
		ms = h.movements.QueryByDateRange(*from, *to)
	} else {
		ms = h.movements.Query(store.MovementFilter{TransactionID: in.TransactionID, Type: in.Type})
	}
	out := make([]dto.MovementResponse, 0, len(ms))
	for _, m := range ms {
		if in.TransactionID != 0 && m.TransactionID != in.TransactionID {
			continue
		}
		if in.Type != "" && m.Type != in.Type {
			continue
		}
		out = append(out, dto.MovementFromEntity(m))
	}
	return c.JSON(out)
}

// dateRange interpreta from/to; sin ninguno devuelve nil. Un extremo ausente queda abierto.
func dateRange(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	if fromRaw == "" && toRaw == "" {
		return nil, nil, nil
	}
	from := time.Time{}
	to := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	var err error
	if fromRaw != "" {
		if from, err = entity.ParseDate(fromRaw); err != nil {
			return nil, nil, err
		}
	}
	if toRaw != "" {
		if to, err = entity.ParseDate(toRaw); err != nil {
			return nil, nil, err
		}
	}
	return &from, &to, nil
}
