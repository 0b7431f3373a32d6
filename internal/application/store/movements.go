package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// MovementFilter filtros de coincidencia exacta.
type MovementFilter struct {
	ID            int64
	TransactionID int64
	Type          string
}

func (f MovementFilter) match(m *entity.Movement) bool {
	if f.ID != 0 && m.ID != f.ID {
		return false
	}
	if f.TransactionID != 0 && m.TransactionID != f.TransactionID {
		return false
	}
	return f.Type == "" || m.Type == f.Type
}

// MovementLog registro de movimientos físicos de inventario.
type MovementLog struct {
	mu            sync.RWMutex
	write         sync.Mutex
	repo          repository.MovementRepository
	log           *logger.Logger
	items         *index[*entity.Movement]
	byTransaction map[int64][]int64
	ledger        *Ledger
}

// NewMovementLog construye el registro vacío; ledger valida la transacción referenciada.
func NewMovementLog(repo repository.MovementRepository, ledger *Ledger, log *logger.Logger) *MovementLog {
	m := &MovementLog{
		repo:          repo,
		log:           log.Component("movimientos"),
		items:         newIndex[*entity.Movement](),
		byTransaction: make(map[int64][]int64),
		ledger:        ledger,
	}
	if ledger != nil {
		ledger.movements = m
	}
	return m
}

// Load reconstruye el índice desde persistencia.
func (ml *MovementLog) Load(ctx context.Context) error {
	list, err := ml.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("cargar movimientos: %w", err)
	}
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.items.reset()
	ml.byTransaction = make(map[int64][]int64)
	for _, m := range list {
		ml.items.put(m.ID, m)
		ml.byTransaction[m.TransactionID] = append(ml.byTransaction[m.TransactionID], m.ID)
	}
	return nil
}

// Register crea un movimiento para una transacción existente.
func (ml *MovementLog) Register(ctx context.Context, in entity.NewMovement) (*entity.Movement, error) {
	m, err := in.Build()
	if err != nil {
		return nil, err
	}
	if ml.ledger != nil && !ml.ledger.Exists(m.TransactionID) {
		return nil, fmt.Errorf("transacción %d: %w", m.TransactionID, domain.ErrNotFound)
	}
	if err := ml.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("registrar movimiento: %w", err)
	}
	ml.mu.Lock()
	ml.items.put(m.ID, m)
	ml.byTransaction[m.TransactionID] = append(ml.byTransaction[m.TransactionID], m.ID)
	ml.mu.Unlock()
	ml.log.Debug().Int64("movement_id", m.ID).Int64("transaction_id", m.TransactionID).Str("tipo", m.Type).Msg("movimiento registrado")
	return m.Clone(), nil
}

// Delete elimina el movimiento id.
func (ml *MovementLog) Delete(ctx context.Context, id int64) error {
	ml.write.Lock()
	defer ml.write.Unlock()
	m, err := ml.Get(id)
	if err != nil {
		return err
	}
	if err := ml.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("eliminar movimiento %d: %w", id, err)
	}
	ml.mu.Lock()
	ml.items.remove(id)
	ml.byTransaction[m.TransactionID] = removeID(ml.byTransaction[m.TransactionID], id)
	ml.mu.Unlock()
	return nil
}

// Get devuelve una copia del movimiento id.
func (ml *MovementLog) Get(id int64) (*entity.Movement, error) {
	ml.mu.RLock()
	defer ml.mu.RUnlock()
	m, ok := ml.items.get(id)
	if !ok {
		return nil, fmt.Errorf("movimiento %d: %w", id, domain.ErrNotFound)
	}
	return m.Clone(), nil
}

// Query movimientos que cumplen el filtro, en orden de alta.
func (ml *MovementLog) Query(f MovementFilter) []*entity.Movement {
	ml.mu.RLock()
	defer ml.mu.RUnlock()
	var out []*entity.Movement
	ml.items.each(func(m *entity.Movement) bool {
		if f.match(m) {
			out = append(out, m.Clone())
		}
		return true
	})
	return out
}

// All todos los movimientos en orden de alta.
func (ml *MovementLog) All() []*entity.Movement { return ml.Query(MovementFilter{}) }

// QueryByTransaction movimientos de la transacción.
func (ml *MovementLog) QueryByTransaction(transactionID int64) []*entity.Movement {
	ml.mu.RLock()
	defer ml.mu.RUnlock()
	ids := ml.byTransaction[transactionID]
	out := make([]*entity.Movement, 0, len(ids))
	for _, id := range ids {
		if m, ok := ml.items.get(id); ok {
			out = append(out, m.Clone())
		}
	}
	return out
}

// QueryByDateRange movimientos con fecha en [from, to], ambos inclusive.
func (ml *MovementLog) QueryByDateRange(from, to time.Time) []*entity.Movement {
	ml.mu.RLock()
	defer ml.mu.RUnlock()
	var out []*entity.Movement
	ml.items.each(func(m *entity.Movement) bool {
		if entity.InRange(m.Date, from, to) {
			out = append(out, m.Clone())
		}
		return true
	})
	return out
}

// QueryByType movimientos de un tipo (compra o venta).
func (ml *MovementLog) QueryByType(movementType string) []*entity.Movement {
	return ml.Query(MovementFilter{Type: movementType})
}

// TypeByTransaction mapa transacción -> tipo de su movimiento (el primero registrado).
func (ml *MovementLog) TypeByTransaction() map[int64]string {
	ml.mu.RLock()
	defer ml.mu.RUnlock()
	out := make(map[int64]string, len(ml.byTransaction))
	for txID, ids := range ml.byTransaction {
		if len(ids) == 0 {
			continue
		}
		if m, ok := ml.items.get(ids[0]); ok {
			out[txID] = m.Type
		}
	}
	return out
}

func (ml *MovementLog) forgetTransactions(txIDs []int64) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	for _, txID := range txIDs {
		for _, id := range ml.byTransaction[txID] {
			ml.items.remove(id)
		}
		delete(ml.byTransaction, txID)
	}
}
