// Package persistence elige el driver configurado y devuelve sus repositorios.
package persistence

import (
	"context"
	"fmt"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
	"github.com/jhoicas/abarroteria/internal/infrastructure/memory"
	"github.com/jhoicas/abarroteria/internal/infrastructure/postgres"
	"github.com/jhoicas/abarroteria/internal/infrastructure/sqlite"
	"github.com/jhoicas/abarroteria/pkg/config"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// Open abre la persistencia de cfg.Driver con las migraciones aplicadas.
// El cierre devuelto libera la conexión y nunca es nil.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (repository.Repositories, func(), error) {
	log = log.Component("persistencia").WithStr("driver", cfg.Driver)
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn().Msg("persistencia en memoria: los datos se pierden al salir")
		return memory.NewDB().Repositories(), func() {}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return repository.Repositories{}, func() {}, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite abierta")
		return sqlite.Repositories(db), func() { _ = db.Close() }, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return repository.Repositories{}, func() {}, err
		}
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return repository.Repositories{}, func() {}, err
		}
		log.Info().Str("host", cfg.Host).Str("db", cfg.DBName).Msg("postgres conectado")
		return postgres.Repositories(pool), pool.Close, nil
	}
	return repository.Repositories{}, func() {}, fmt.Errorf("%w: driver de persistencia %q", domain.ErrInvalidInput, cfg.Driver)
}
