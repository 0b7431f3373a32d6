// Package store contiene los cinco almacenes de entidades. Cada uno mantiene un índice en memoria
// autoritativo y escribe a persistencia antes de mutarlo; las consultas no tocan la base de datos.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// Stores agrupa los almacenes con las cascadas entre ellos ya conectadas.
type Stores struct {
	Catalog   *Catalog
	Clients   *ClientRegistry
	Suppliers *SupplierRegistry
	Ledger    *Ledger
	Movements *MovementLog
	// Rotations historial de ventanas de rebaja; se escribe directo a persistencia.
	Rotations repository.RotationRepository

	// ops serializa las operaciones que leen y escriben varios almacenes a la vez.
	ops sync.Mutex
}

// New construye los almacenes vacíos sobre los repositorios dados.
func New(repos repository.Repositories, log *logger.Logger) *Stores {
	catalog := NewCatalog(repos.Products, log)
	clients := NewClientRegistry(repos.Clients, log)
	suppliers := NewSupplierRegistry(repos.Suppliers, log)
	ledger := NewLedger(repos.Transactions, clients, suppliers, log)
	movements := NewMovementLog(repos.Movements, ledger, log)

	clients.ledger = ledger
	suppliers.catalog = catalog
	suppliers.ledger = ledger

	return &Stores{
		Catalog:   catalog,
		Clients:   clients,
		Suppliers: suppliers,
		Ledger:    ledger,
		Movements: movements,
		Rotations: repos.Rotations,
	}
}

// Open construye los almacenes y los carga desde persistencia.
func Open(ctx context.Context, repos repository.Repositories, log *logger.Logger) (*Stores, error) {
	s := New(repos, log)
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload vuelve a leer todas las relaciones desde persistencia.
func (s *Stores) Reload(ctx context.Context) error {
	loaders := []func(context.Context) error{
		s.Suppliers.Load,
		s.Clients.Load,
		s.Catalog.Load,
		s.Ledger.Load,
		s.Movements.Load,
	}
	for _, load := range loaders {
		if err := load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Exclusive ejecuta fn sin que otra operación exclusiva corra a la vez; espera su turno.
func (s *Stores) Exclusive(fn func() error) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	return fn()
}

// TryExclusive como Exclusive pero no espera: domain.ErrConflict si hay otra en curso.
func (s *Stores) TryExclusive(fn func() error) error {
	if !s.ops.TryLock() {
		return fmt.Errorf("%w: hay otra operación en curso sobre la tienda", domain.ErrConflict)
	}
	defer s.ops.Unlock()
	return fn()
}
