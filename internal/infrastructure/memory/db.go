// Package memory implementa los puertos de persistencia sin base de datos. Replica las
// cascadas del esquema relacional y permite inyectar fallos por operación.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

// Operaciones a las que se puede inyectar un fallo con DB.FailOn.
const (
	OpProductCreate     = "products.create"
	OpProductUpdate     = "products.update"
	OpProductDelete     = "products.delete"
	OpClientCreate      = "clients.create"
	OpClientUpdate      = "clients.update"
	OpClientDelete      = "clients.delete"
	OpSupplierCreate    = "suppliers.create"
	OpSupplierUpdate    = "suppliers.update"
	OpSupplierDelete    = "suppliers.delete"
	OpTransactionCreate = "transactions.create"
	OpTransactionUpdate = "transactions.update"
	OpTransactionDelete = "transactions.delete"
	OpMovementCreate    = "movements.create"
	OpMovementDelete    = "movements.delete"
	OpRotationRecord    = "rotations.record"
	OpList              = "list"
)

// DB estado compartido por todos los repositorios.
type DB struct {
	mu           sync.Mutex
	nextID       map[string]int64
	products     map[int64]*entity.Product
	clients      map[int64]*entity.Client
	suppliers    map[int64]*entity.Supplier
	transactions map[int64]*entity.Transaction
	movements    map[int64]*entity.Movement
	rotations    []entity.Rotation
	faults       map[string]error
}

// NewDB crea una base vacía.
func NewDB() *DB {
	return &DB{
		nextID:       make(map[string]int64),
		products:     make(map[int64]*entity.Product),
		clients:      make(map[int64]*entity.Client),
		suppliers:    make(map[int64]*entity.Supplier),
		transactions: make(map[int64]*entity.Transaction),
		movements:    make(map[int64]*entity.Movement),
		faults:       make(map[string]error),
	}
}

// FailOn hace que la operación op devuelva err hasta que se llame a Recover(op).
// Si err es nil se usa domain.ErrStoreUnavailable.
func (db *DB) FailOn(op string, err error) {
	if err == nil {
		err = domain.ErrStoreUnavailable
	}
	db.mu.Lock()
	db.faults[op] = err
	db.mu.Unlock()
}

// Recover elimina el fallo inyectado en op.
func (db *DB) Recover(op string) {
	db.mu.Lock()
	delete(db.faults, op)
	db.mu.Unlock()
}

// Repositories devuelve los repositorios sobre esta base.
func (db *DB) Repositories() repository.Repositories {
	return repository.Repositories{
		Products:     &ProductRepo{db: db},
		Clients:      &ClientRepo{db: db},
		Suppliers:    &SupplierRepo{db: db},
		Transactions: &TransactionRepo{db: db},
		Movements:    &MovementRepo{db: db},
		Rotations:    &RotationRepo{db: db},
	}
}

// begin toma el lock y verifica contexto y fallos inyectados; el llamador debe liberar con db.mu.Unlock.
func (db *DB) begin(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	db.mu.Lock()
	if err, ok := db.faults[op]; ok {
		db.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (db *DB) id(table string) int64 {
	db.nextID[table]++
	return db.nextID[table]
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
}
