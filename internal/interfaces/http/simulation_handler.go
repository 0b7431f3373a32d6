package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abarroteria/internal/application/dto"
	"github.com/jhoicas/abarroteria/internal/application/simulation"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// SimulationHandler ejecuta semanas simuladas sobre los almacenes del servidor.
type SimulationHandler struct {
	runner *simulation.Runner
}

// NewSimulationHandler construye el handler.
func NewSimulationHandler(runner *simulation.Runner) *SimulationHandler {
	return &SimulationHandler{runner: runner}
}

// Run godoc
// @Summary      Simular una semana
// @Tags         simulations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SimulationRequest  false  "Horizonte, semilla y fecha de inicio"
// @Success      201   {object}  dto.SimulationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/simulations [post]
func (h *SimulationHandler) Run(c *fiber.Ctx) error {
	var in dto.SimulationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
	}
	if ok, err := validate(c, in); !ok {
		return err
	}
	o := simulation.Overrides{Horizon: in.HorizonDays, Seed: in.Seed, ItemsPerSale: in.ItemsPerSale}
	if in.StartDate != "" {
		start, err := entity.ParseDate(in.StartDate)
		if err != nil {
			return respondError(c, err)
		}
		o.Start = start
	}

	res, err := h.runner.Run(c.UserContext(), o)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SimulationFromResult(res))
}
