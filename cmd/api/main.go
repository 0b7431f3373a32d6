package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/abarroteria/internal/application/pricing"
	"github.com/jhoicas/abarroteria/internal/application/reorder"
	"github.com/jhoicas/abarroteria/internal/application/rotation"
	"github.com/jhoicas/abarroteria/internal/application/simulation"
	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/infrastructure/metrics"
	"github.com/jhoicas/abarroteria/internal/infrastructure/persistence"
	httpRouter "github.com/jhoicas/abarroteria/internal/interfaces/http"
	"github.com/jhoicas/abarroteria/pkg/config"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repos, closeDB, err := persistence.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir persistencia")
	}
	defer closeDB()

	stores, err := store.Open(ctx, repos, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar almacenes")
	}

	// Métricas: sin registrador los contadores son no-op.
	var m *metrics.Metrics
	deps := httpRouter.RouterDeps{AppName: cfg.App.Name, Stores: stores, Defaults: cfg.Policy}
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		deps.Metrics = metrics.Handler()
	}

	thresholds := reorder.Thresholds{StockThreshold: cfg.Policy.StockThreshold, StockTarget: cfg.Policy.StockTarget}
	deps.Policy = rotation.NewPolicy(stores.Catalog, stores.Rotations, log, m, time.Now)
	deps.Adjuster = pricing.NewAdjuster(stores, thresholds, log, m, time.Now)
	deps.Runner = simulation.NewRunner(stores, simulation.WeekConfigFrom(cfg), log, m)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Abarrotería API",
	}))

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
