package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abarroteria/internal/application/dto"
	"github.com/jhoicas/abarroteria/internal/application/pricing"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/pkg/config"
)

// PricingHandler dispara el ajuste de precios y política de stock sobre una ventana.
type PricingHandler struct {
	adjuster  *pricing.Adjuster
	defaults  config.PolicyConfig
	exclusive func(func() error) error
}

// NewPricingHandler construye el handler; el ajuste corre dentro de exclusive.
func NewPricingHandler(adjuster *pricing.Adjuster, defaults config.PolicyConfig, exclusive func(func() error) error) *PricingHandler {
	return &PricingHandler{adjuster: adjuster, defaults: defaults, exclusive: exclusive}
}

// Adjust godoc
// @Summary      Ajustar precios y stock por margen y rotación
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustPricingRequest  true  "Ventana y parámetros"
// @Success      200   {object}  dto.AdjustPricingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/pricing/adjust [post]
func (h *PricingHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustPricingRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if ok, err := validate(c, in); !ok {
		return err
	}
	from, err := entity.ParseDate(in.From)
	if err != nil {
		return respondError(c, err)
	}
	to, err := entity.ParseDate(in.To)
	if err != nil {
		return respondError(c, err)
	}
	margin, rot := h.defaults.MarginTarget, h.defaults.MinRotation
	if in.MarginTarget != nil {
		margin = *in.MarginTarget
	}
	if in.MinRotation != nil {
		rot = *in.MinRotation
	}

	var notes []pricing.AdjustmentNote
	err = h.exclusive(func() error {
		var err error
		notes, err = h.adjuster.AdjustPricingAndStock(c.UserContext(), from, to, margin, rot)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AdjustPricingResponse{Notes: dto.NotesFromAdjustments(notes)})
}
