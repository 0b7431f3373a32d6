// simulacion ejecuta una semana de operación de la tienda sobre la persistencia configurada
// y exporta el reporte semanal en XLSX y PDF.
//
// Uso: go run ./cmd/simulacion
// Parámetros vía entorno: SIM_HORIZON_DAYS, SIM_SEED, SIM_START_DATE, SIM_REPORT_DIR, POLICY_*, DB_DRIVER.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jhoicas/abarroteria/internal/application/simulation"
	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/infrastructure/excel"
	"github.com/jhoicas/abarroteria/internal/infrastructure/pdf"
	"github.com/jhoicas/abarroteria/internal/infrastructure/persistence"
	"github.com/jhoicas/abarroteria/pkg/config"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("simulación fallida")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	repos, closeDB, err := persistence.Open(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer closeDB()

	stores, err := store.Open(ctx, repos, log)
	if err != nil {
		return err
	}

	res, err := simulation.NewRunner(stores, simulation.WeekConfigFrom(cfg), log, nil).Run(ctx, simulation.Overrides{})
	if err != nil {
		return err
	}
	log.Info().
		Str("run_id", res.RunID.String()).
		Int("procesados", res.Summary.Processed).
		Int("fallidos", res.Summary.Failed).
		Int("ajustes", len(res.Adjustments)).
		Msg("semana simulada")
	for _, n := range res.Adjustments {
		log.Debug().Msg(n.String())
	}

	if cfg.Simulation.ReportDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Simulation.ReportDir, 0o750); err != nil {
		return fmt.Errorf("crear carpeta de reportes: %w", err)
	}
	base := filepath.Join(cfg.Simulation.ReportDir,
		fmt.Sprintf("semana_%s_%s", entity.FormatDate(res.Start), entity.FormatDate(res.End)))

	if err := excel.NewWeeklyReportWriter().Save(base+".xlsx", res.Report); err != nil {
		return err
	}
	if err := pdf.NewMarotoPDFGenerator(cfg.App.Name).Save(base+".pdf", res.Report); err != nil {
		return err
	}
	log.Info().Str("base", base).Msg("reportes exportados")
	return nil
}
