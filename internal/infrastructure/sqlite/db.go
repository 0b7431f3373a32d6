// Package sqlite implementa los puertos de persistencia sobre SQLite (modernc.org/sqlite, sin cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
	"github.com/jhoicas/abarroteria/internal/infrastructure/migrations"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// Querier lo implementan *sql.DB y *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open abre (o crea) la base en path y aplica las migraciones pendientes.
func Open(ctx context.Context, path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		path = "abarroteria.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("crear directorio de la base: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// Un solo escritor: SQLite serializa igual y así se evita SQLITE_BUSY entre conexiones.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, mapError("ping sqlite", err)
	}
	if err := migrations.Up(ctx, db, "sqlite", log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Repositories construye los adaptadores sobre q.
func Repositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Products:     NewProductRepository(q),
		Clients:      NewClientRepository(q),
		Suppliers:    NewSupplierRepository(q),
		Transactions: NewTransactionRepository(q),
		Movements:    NewMovementRepository(q),
		Rotations:    NewRotationRepository(q),
	}
}

// mapError traduce errores del driver a los errores de dominio.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_CANTOPEN,
			sqlite3.SQLITE_FULL, sqlite3.SQLITE_READONLY:
			return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%s: %w: %v", op, domain.ErrInvalidInput, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// requireRow devuelve ErrNotFound si la sentencia no afectó filas.
func requireRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("filas afectadas", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return nil
}
