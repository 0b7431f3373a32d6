package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abarroteria/internal/application/store"
)

// ClientHandler maneja las peticiones HTTP de clientes.
type ClientHandler struct {
	clients   *store.ClientRegistry
	exclusive func(func() error) error
}

// NewClientHandler construye el handler; el borrado en cascada corre dentro de exclusive.
func NewClientHandler(clients *store.ClientRegistry, exclusive func(func() error) error) *ClientHandler {
	return &ClientHandler{clients: clients, exclusive: exclusive}
}

// Delete DELETE /api/clients/:id: elimina el cliente con sus transacciones y movimientos.
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	err := h.exclusive(func() error { return h.clients.Delete(c.UserContext(), id) })
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
