package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// SupplierFilter filtros de coincidencia exacta; Name sin distinguir mayúsculas.
type SupplierFilter struct {
	ID   int64
	Name string
}

func (f SupplierFilter) match(s *entity.Supplier) bool {
	if f.ID != 0 && s.ID != f.ID {
		return false
	}
	return f.Name == "" || sameName(s.Name, f.Name)
}

// SupplierRegistry almacén de proveedores.
type SupplierRegistry struct {
	mu      sync.RWMutex
	write   sync.Mutex
	repo    repository.SupplierRepository
	log     *logger.Logger
	items   *index[*entity.Supplier]
	catalog *Catalog
	ledger  *Ledger
}

// NewSupplierRegistry construye el registro vacío.
func NewSupplierRegistry(repo repository.SupplierRepository, log *logger.Logger) *SupplierRegistry {
	return &SupplierRegistry{repo: repo, log: log.Component("proveedores"), items: newIndex[*entity.Supplier]()}
}

// Load reconstruye el índice desde persistencia.
func (r *SupplierRegistry) Load(ctx context.Context) error {
	list, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("cargar proveedores: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items.reset()
	for _, s := range list {
		r.items.put(s.ID, s)
	}
	return nil
}

// Register da de alta un proveedor.
func (r *SupplierRegistry) Register(ctx context.Context, in entity.NewSupplier) (*entity.Supplier, error) {
	s, err := in.Build()
	if err != nil {
		return nil, err
	}
	if err := r.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("registrar proveedor %q: %w", in.Name, err)
	}
	r.mu.Lock()
	r.items.put(s.ID, s)
	r.mu.Unlock()
	r.log.Debug().Int64("supplier_id", s.ID).Str("nombre", s.Name).Msg("proveedor registrado")
	return s.Clone(), nil
}

// Update actualiza los datos de contacto del proveedor id.
func (r *SupplierRegistry) Update(ctx context.Context, id int64, change entity.SupplierContactChange) (*entity.Supplier, error) {
	r.write.Lock()
	defer r.write.Unlock()
	current, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	next := change.Apply(current)
	if err := r.repo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("actualizar proveedor %d: %w", id, err)
	}
	r.mu.Lock()
	r.items.put(id, next)
	r.mu.Unlock()
	return next.Clone(), nil
}

// Delete elimina el proveedor; productos y transacciones que lo referencian quedan sin proveedor.
func (r *SupplierRegistry) Delete(ctx context.Context, id int64) error {
	r.write.Lock()
	defer r.write.Unlock()
	if _, err := r.Get(id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("eliminar proveedor %d: %w", id, err)
	}
	r.mu.Lock()
	r.items.remove(id)
	r.mu.Unlock()
	if r.catalog != nil {
		r.catalog.forgetSupplier(id)
	}
	if r.ledger != nil {
		r.ledger.forgetSupplier(id)
	}
	return nil
}

// Get devuelve una copia del proveedor id.
func (r *SupplierRegistry) Get(id int64) (*entity.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items.get(id)
	if !ok {
		return nil, fmt.Errorf("proveedor %d: %w", id, domain.ErrNotFound)
	}
	return s.Clone(), nil
}

// Query proveedores que cumplen el filtro, en orden de alta.
func (r *SupplierRegistry) Query(f SupplierFilter) []*entity.Supplier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Supplier
	r.items.each(func(s *entity.Supplier) bool {
		if f.match(s) {
			out = append(out, s.Clone())
		}
		return true
	})
	return out
}

// All todos los proveedores en orden de alta.
func (r *SupplierRegistry) All() []*entity.Supplier { return r.Query(SupplierFilter{}) }
