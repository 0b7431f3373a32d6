// Package migrations aplica el esquema versionado (goose) embebido en el binario.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/jhoicas/abarroteria/pkg/logger"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Up aplica las migraciones pendientes del dialecto ("sqlite" o "postgres").
func Up(ctx context.Context, db *sql.DB, dialect string, log *logger.Logger) error {
	gooseDialect, dir, err := resolve(dialect)
	if err != nil {
		return err
	}
	fsys, err := fs.Sub(files, dir)
	if err != nil {
		return fmt.Errorf("migraciones %s: %w", dir, err)
	}
	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("crear proveedor goose: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	for _, r := range results {
		log.Info().Int64("version", r.Source.Version).Dur("duracion", r.Duration).Msg("migración aplicada")
	}
	return nil
}

func resolve(dialect string) (goose.Dialect, string, error) {
	switch dialect {
	case "sqlite":
		return goose.DialectSQLite3, "sqlite", nil
	case "postgres":
		return goose.DialectPostgres, "postgres", nil
	default:
		return "", "", fmt.Errorf("dialecto de migraciones no soportado: %q", dialect)
	}
}
