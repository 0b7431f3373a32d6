package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abarroteria/internal/application/dto"
	"github.com/jhoicas/abarroteria/internal/application/store"
)

// ProductHandler consultas HTTP sobre el catálogo.
type ProductHandler struct {
	catalog *store.Catalog
}

// NewProductHandler construye el handler.
func NewProductHandler(catalog *store.Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	p, err := h.catalog.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProductFromEntity(p))
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Param        name      query  string  false  "Nombre exacto (sin distinguir mayúsculas)"
// @Param        category  query  string  false  "Categoría"
// @Param        limit     query  int     false  "Límite"   default(20)
// @Param        offset    query  int     false  "Offset"   default(0)
// @Success      200       {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var in dto.ProductListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if ok, err := validate(c, in); !ok {
		return err
	}
	in.DefaultPage()
	all := h.catalog.Query(store.ProductFilter{Name: in.Name, Category: in.Category})
	return c.JSON(dto.ProductListResponse{
		Items: dto.ProductsFromEntities(dto.Window(all, in.PageRequest)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: len(all)},
	})
}
