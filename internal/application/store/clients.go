package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// InternalClientName nombre del pseudo-cliente que figura en las compras a proveedores.
const InternalClientName = "Inventario"

// ClientFilter filtros de coincidencia exacta; Name sin distinguir mayúsculas.
type ClientFilter struct {
	ID   int64
	Name string
	Type string
}

func (f ClientFilter) match(c *entity.Client) bool {
	if f.ID != 0 && c.ID != f.ID {
		return false
	}
	if f.Name != "" && !sameName(c.Name, f.Name) {
		return false
	}
	if f.Type != "" && c.Type != f.Type {
		return false
	}
	return true
}

// ClientRegistry almacén de clientes.
type ClientRegistry struct {
	mu     sync.RWMutex
	write  sync.Mutex
	repo   repository.ClientRepository
	log    *logger.Logger
	items  *index[*entity.Client]
	ledger *Ledger
}

// NewClientRegistry construye el registro vacío.
func NewClientRegistry(repo repository.ClientRepository, log *logger.Logger) *ClientRegistry {
	return &ClientRegistry{repo: repo, log: log.Component("clientes"), items: newIndex[*entity.Client]()}
}

// Load reconstruye el índice desde persistencia.
func (r *ClientRegistry) Load(ctx context.Context) error {
	list, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("cargar clientes: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items.reset()
	for _, c := range list {
		r.items.put(c.ID, c)
	}
	return nil
}

// Register da de alta un cliente.
func (r *ClientRegistry) Register(ctx context.Context, in entity.NewClient) (*entity.Client, error) {
	r.write.Lock()
	defer r.write.Unlock()
	return r.register(ctx, in)
}

func (r *ClientRegistry) register(ctx context.Context, in entity.NewClient) (*entity.Client, error) {
	c, err := in.Build()
	if err != nil {
		return nil, err
	}
	if err := r.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("registrar cliente %q: %w", in.Name, err)
	}
	r.mu.Lock()
	r.items.put(c.ID, c)
	r.mu.Unlock()
	r.log.Debug().Int64("client_id", c.ID).Str("tipo", c.Type).Msg("cliente registrado")
	return c.Clone(), nil
}

// EnsureInternal devuelve el pseudo-cliente interno, creándolo si no existe.
func (r *ClientRegistry) EnsureInternal(ctx context.Context) (*entity.Client, error) {
	r.write.Lock()
	defer r.write.Unlock()
	if list := r.Query(ClientFilter{Type: entity.ClientTypeInternal}); len(list) > 0 {
		return list[0], nil
	}
	return r.register(ctx, entity.NewClient{
		Name:    InternalClientName,
		Contact: "N/A",
		Address: "N/A",
		Type:    entity.ClientTypeInternal,
		Credit:  decimal.Zero,
	})
}

// Update aplica cambios tipados al cliente id.
func (r *ClientRegistry) Update(ctx context.Context, id int64, changes ...entity.ClientChange) (*entity.Client, error) {
	r.write.Lock()
	defer r.write.Unlock()
	current, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	next, err := entity.ApplyClientChanges(current, changes...)
	if err != nil {
		return nil, fmt.Errorf("cliente %d: %w", id, err)
	}
	if err := r.repo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("actualizar cliente %d: %w", id, err)
	}
	r.mu.Lock()
	r.items.put(id, next)
	r.mu.Unlock()
	return next.Clone(), nil
}

// Delete elimina el cliente y, en cascada, sus transacciones y los movimientos de estas.
func (r *ClientRegistry) Delete(ctx context.Context, id int64) error {
	r.write.Lock()
	defer r.write.Unlock()
	if _, err := r.Get(id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("eliminar cliente %d: %w", id, err)
	}
	r.mu.Lock()
	r.items.remove(id)
	r.mu.Unlock()
	removed := 0
	if r.ledger != nil {
		removed = r.ledger.forgetClient(id)
	}
	r.log.Info().Int64("client_id", id).Int("transacciones", removed).Msg("cliente eliminado")
	return nil
}

// Get devuelve una copia del cliente id.
func (r *ClientRegistry) Get(id int64) (*entity.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items.get(id)
	if !ok {
		return nil, fmt.Errorf("cliente %d: %w", id, domain.ErrNotFound)
	}
	return c.Clone(), nil
}

// Query clientes que cumplen el filtro, en orden de alta.
func (r *ClientRegistry) Query(f ClientFilter) []*entity.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Client
	r.items.each(func(c *entity.Client) bool {
		if f.match(c) {
			out = append(out, c.Clone())
		}
		return true
	})
	return out
}

// All todos los clientes en orden de alta.
func (r *ClientRegistry) All() []*entity.Client { return r.Query(ClientFilter{}) }

// Customers clientes que pueden comprar (excluye al interno).
func (r *ClientRegistry) Customers() []*entity.Client {
	var out []*entity.Client
	for _, c := range r.All() {
		if !c.IsInternal() {
			out = append(out, c)
		}
	}
	return out
}
