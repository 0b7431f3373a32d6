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

// TransactionFilter filtros de coincidencia exacta.
type TransactionFilter struct {
	ID          int64
	ClientID    int64
	SupplierID  *int64
	Status      string
	PaymentType string
	ProductID   int64
}

func (f TransactionFilter) match(t *entity.Transaction) bool {
	if f.ID != 0 && t.ID != f.ID {
		return false
	}
	if f.ClientID != 0 && t.ClientID != f.ClientID {
		return false
	}
	if f.SupplierID != nil && (t.SupplierID == nil || *t.SupplierID != *f.SupplierID) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.PaymentType != "" && !sameName(t.PaymentType, f.PaymentType) {
		return false
	}
	if f.ProductID != 0 && !t.References(f.ProductID) {
		return false
	}
	return true
}

// Ledger libro de transacciones (ventas y compras a proveedores).
type Ledger struct {
	mu        sync.RWMutex
	write     sync.Mutex
	repo      repository.TransactionRepository
	log       *logger.Logger
	items     *index[*entity.Transaction]
	byClient  map[int64][]int64
	clients   *ClientRegistry
	suppliers *SupplierRegistry
	movements *MovementLog
}

// NewLedger construye el libro vacío; clients y suppliers validan las referencias al registrar.
func NewLedger(repo repository.TransactionRepository, clients *ClientRegistry, suppliers *SupplierRegistry, log *logger.Logger) *Ledger {
	return &Ledger{
		repo:      repo,
		log:       log.Component("transacciones"),
		items:     newIndex[*entity.Transaction](),
		byClient:  make(map[int64][]int64),
		clients:   clients,
		suppliers: suppliers,
	}
}

// Load reconstruye el índice desde persistencia.
func (l *Ledger) Load(ctx context.Context) error {
	list, err := l.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("cargar transacciones: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items.reset()
	l.byClient = make(map[int64][]int64)
	for _, t := range list {
		l.items.put(t.ID, t)
		l.byClient[t.ClientID] = append(l.byClient[t.ClientID], t.ID)
	}
	return nil
}

// Register crea una transacción. El total se calcula de las líneas al crearla y no se revalida después.
func (l *Ledger) Register(ctx context.Context, in entity.NewTransaction) (*entity.Transaction, error) {
	t, err := in.Build()
	if err != nil {
		return nil, err
	}
	if l.clients != nil {
		if _, err := l.clients.Get(t.ClientID); err != nil {
			return nil, err
		}
	}
	if t.SupplierID != nil && l.suppliers != nil {
		if _, err := l.suppliers.Get(*t.SupplierID); err != nil {
			return nil, err
		}
	}
	if err := l.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("registrar transacción: %w", err)
	}
	l.mu.Lock()
	l.items.put(t.ID, t)
	l.byClient[t.ClientID] = append(l.byClient[t.ClientID], t.ID)
	l.mu.Unlock()
	l.log.Debug().Int64("transaction_id", t.ID).Int64("client_id", t.ClientID).
		Str("total", t.Total.StringFixed(2)).Str("estado", t.Status).Msg("transacción registrada")
	return t.Clone(), nil
}

// UpdateStatus único cambio permitido sobre una transacción existente.
func (l *Ledger) UpdateStatus(ctx context.Context, id int64, status string) (*entity.Transaction, error) {
	if !entity.ValidStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	l.write.Lock()
	defer l.write.Unlock()
	current, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if err := l.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("actualizar estado de transacción %d: %w", id, err)
	}
	current.Status = status
	l.mu.Lock()
	l.items.put(id, current)
	l.mu.Unlock()
	return current.Clone(), nil
}

// Delete elimina la transacción y sus movimientos.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	l.write.Lock()
	defer l.write.Unlock()
	t, err := l.Get(id)
	if err != nil {
		return err
	}
	if err := l.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("eliminar transacción %d: %w", id, err)
	}
	l.mu.Lock()
	l.items.remove(id)
	l.byClient[t.ClientID] = removeID(l.byClient[t.ClientID], id)
	l.mu.Unlock()
	if l.movements != nil {
		l.movements.forgetTransactions([]int64{id})
	}
	return nil
}

// Get devuelve una copia de la transacción id.
func (l *Ledger) Get(id int64) (*entity.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.items.get(id)
	if !ok {
		return nil, fmt.Errorf("transacción %d: %w", id, domain.ErrNotFound)
	}
	return t.Clone(), nil
}

// Exists indica si la transacción está registrada.
func (l *Ledger) Exists(id int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.items.get(id)
	return ok
}

// Query transacciones que cumplen el filtro, en orden de alta.
func (l *Ledger) Query(f TransactionFilter) []*entity.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*entity.Transaction
	l.items.each(func(t *entity.Transaction) bool {
		if f.match(t) {
			out = append(out, t.Clone())
		}
		return true
	})
	return out
}

// All todas las transacciones en orden de alta.
func (l *Ledger) All() []*entity.Transaction { return l.Query(TransactionFilter{}) }

// QueryByDateRange transacciones con fecha en [from, to], ambos inclusive (por día calendario).
func (l *Ledger) QueryByDateRange(from, to time.Time) []*entity.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*entity.Transaction
	l.items.each(func(t *entity.Transaction) bool {
		if entity.InRange(t.Date, from, to) {
			out = append(out, t.Clone())
		}
		return true
	})
	return out
}

// QueryByClient transacciones del cliente en orden de alta.
func (l *Ledger) QueryByClient(clientID int64) []*entity.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := l.byClient[clientID]
	out := make([]*entity.Transaction, 0, len(ids))
	for _, id := range ids {
		if t, ok := l.items.get(id); ok {
			out = append(out, t.Clone())
		}
	}
	return out
}

// QueryByStatus transacciones en el estado indicado.
func (l *Ledger) QueryByStatus(status string) []*entity.Transaction {
	return l.Query(TransactionFilter{Status: status})
}

// forgetClient refleja en memoria la cascada de borrado de un cliente.
func (l *Ledger) forgetClient(clientID int64) int {
	l.mu.Lock()
	ids := l.byClient[clientID]
	delete(l.byClient, clientID)
	for _, id := range ids {
		l.items.remove(id)
	}
	l.mu.Unlock()
	if l.movements != nil && len(ids) > 0 {
		l.movements.forgetTransactions(ids)
	}
	return len(ids)
}

func (l *Ledger) forgetSupplier(supplierID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items.each(func(t *entity.Transaction) bool {
		if t.SupplierID != nil && *t.SupplierID == supplierID {
			t.SupplierID = nil
		}
		return true
	})
}
