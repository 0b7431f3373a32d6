package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abarroteria/internal/application/dto"
	"github.com/jhoicas/abarroteria/internal/application/rotation"
	"github.com/jhoicas/abarroteria/pkg/config"
)

// RotationHandler listados de temporada y rebajas, y pasada manual de rebajas por expiración.
type RotationHandler struct {
	policy    *rotation.Policy
	defaults  config.PolicyConfig
	exclusive func(func() error) error
}

// NewRotationHandler construye el handler; defaults completa los campos ausentes del body.
// La pasada de rebajas corre dentro de exclusive para no intercalarse con una simulación.
func NewRotationHandler(policy *rotation.Policy, defaults config.PolicyConfig, exclusive func(func() error) error) *RotationHandler {
	return &RotationHandler{policy: policy, defaults: defaults, exclusive: exclusive}
}

// Seasonal GET /api/rotation/seasonal
func (h *RotationHandler) Seasonal(c *fiber.Ctx) error {
	return c.JSON(dto.ProductsFromEntities(h.policy.SeasonalProducts()))
}

// Discounted GET /api/rotation/discounted
func (h *RotationHandler) Discounted(c *fiber.Ctx) error {
	return c.JSON(dto.ProductsFromEntities(h.policy.DiscountedProducts()))
}

// ApplyExpirationDiscounts godoc
// @Summary      Rebajar productos próximos a vencer
// @Tags         rotation
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExpirationDiscountRequest  false  "Días de anticipación y rebaja"
// @Success      200   {object}  dto.DiscountRunResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/rotation/expiration-discounts [post]
func (h *RotationHandler) ApplyExpirationDiscounts(c *fiber.Ctx) error {
	var in dto.ExpirationDiscountRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
	}
	if ok, err := validate(c, in); !ok {
		return err
	}
	days, pct := h.defaults.ExpirationDaysAhead, h.defaults.ExpirationDiscount
	if in.DaysAhead != nil {
		days = *in.DaysAhead
	}
	if in.Discount != nil {
		pct = *in.Discount
	}
	var n int
	err := h.exclusive(func() error {
		var err error
		n, err = h.policy.ApplyExpirationDiscounts(c.UserContext(), days, pct)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DiscountRunResponse{Applied: n, Discounted: dto.ProductsFromEntities(h.policy.DiscountedProducts())})
}
