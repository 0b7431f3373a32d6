package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/abarroteria/internal/application/pricing"
	"github.com/jhoicas/abarroteria/internal/application/rotation"
	"github.com/jhoicas/abarroteria/internal/application/simulation"
	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/pkg/config"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName  string
	Stores   *store.Stores
	Policy   *rotation.Policy
	Adjuster *pricing.Adjuster
	Runner   *simulation.Runner
	Defaults config.PolicyConfig
	// Metrics handler de /metrics; nil no registra la ruta.
	Metrics nethttp.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Stores.Catalog)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Rotation
	rot := api.Group("/rotation")
	rotationHandler := NewRotationHandler(deps.Policy, deps.Defaults, deps.Stores.Exclusive)
	rot.Get("/seasonal", rotationHandler.Seasonal)
	rot.Get("/discounted", rotationHandler.Discounted)
	rot.Post("/expiration-discounts", rotationHandler.ApplyExpirationDiscounts)

	// Transactions & movements
	txHandler := NewTransactionHandler(deps.Stores.Ledger, deps.Stores.Movements)
	api.Get("/transactions", txHandler.ListTransactions)
	api.Get("/movements", txHandler.ListMovements)

	// Clients
	clientHandler := NewClientHandler(deps.Stores.Clients, deps.Stores.Exclusive)
	api.Delete("/clients/:id", clientHandler.Delete)

	// Pricing
	pricingHandler := NewPricingHandler(deps.Adjuster, deps.Defaults, deps.Stores.Exclusive)
	api.Post("/pricing/adjust", pricingHandler.Adjust)

	// Simulations
	simHandler := NewSimulationHandler(deps.Runner)
	api.Post("/simulations", simHandler.Run)
}
