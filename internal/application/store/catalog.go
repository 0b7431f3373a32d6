package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

// ProductFilter filtros de coincidencia exacta; los campos vacíos no filtran.
// Name y Category se comparan sin distinguir mayúsculas.
type ProductFilter struct {
	ID         int64
	Name       string
	Category   string
	SupplierID *int64
}

func (f ProductFilter) match(p *entity.Product) bool {
	if f.ID != 0 && p.ID != f.ID {
		return false
	}
	if f.Name != "" && !sameName(p.Name, f.Name) {
		return false
	}
	if f.Category != "" && !sameName(p.Category, f.Category) {
		return false
	}
	if f.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *f.SupplierID) {
		return false
	}
	return true
}

// Catalog almacén de productos: índice en memoria autoritativo con escritura directa a persistencia.
// Toda mutación se persiste primero; si la persistencia falla, la memoria no cambia.
type Catalog struct {
	mu         sync.RWMutex
	write      sync.Mutex // serializa lectura, persistencia e índice de cada mutación
	repo       repository.ProductRepository
	log        *logger.Logger
	items      *index[*entity.Product]
	byCategory map[string][]int64 // categoría normalizada -> IDs en orden de alta
	categories map[string]string  // categoría normalizada -> nombre para mostrar
}

// NewCatalog construye el catálogo vacío; usar Load para poblarlo desde persistencia.
func NewCatalog(repo repository.ProductRepository, log *logger.Logger) *Catalog {
	return &Catalog{
		repo:       repo,
		log:        log.Component("catalogo"),
		items:      newIndex[*entity.Product](),
		byCategory: make(map[string][]int64),
		categories: make(map[string]string),
	}
}

// Load reconstruye el índice en memoria desde la persistencia.
func (c *Catalog) Load(ctx context.Context) error {
	list, err := c.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("cargar productos: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.reset()
	c.byCategory = make(map[string][]int64)
	c.categories = make(map[string]string)
	for _, p := range list {
		c.index(p)
	}
	c.log.Debug().Int("productos", len(list)).Msg("catálogo cargado")
	return nil
}

func (c *Catalog) index(p *entity.Product) {
	key := fold(p.Category)
	if prev, ok := c.items.get(p.ID); ok && fold(prev.Category) != key {
		prevKey := fold(prev.Category)
		c.byCategory[prevKey] = removeID(c.byCategory[prevKey], p.ID)
		if len(c.byCategory[prevKey]) == 0 {
			delete(c.byCategory, prevKey)
			delete(c.categories, prevKey)
		}
	}
	if _, ok := c.items.get(p.ID); !ok || !containsID(c.byCategory[key], p.ID) {
		c.byCategory[key] = append(c.byCategory[key], p.ID)
	}
	if _, ok := c.categories[key]; !ok {
		c.categories[key] = p.Category
	}
	c.items.put(p.ID, p)
}

// Register da de alta un producto y devuelve la entidad con su ID asignado.
func (c *Catalog) Register(ctx context.Context, in entity.NewProduct) (*entity.Product, error) {
	p, err := in.Build()
	if err != nil {
		return nil, err
	}
	if err := c.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("registrar producto %q: %w", in.Name, err)
	}
	c.mu.Lock()
	c.index(p)
	c.mu.Unlock()
	c.log.Debug().Int64("product_id", p.ID).Str("nombre", p.Name).Msg("producto registrado")
	return p.Clone(), nil
}

// Update aplica cambios tipados al producto id. domain.ErrNotFound si no existe.
func (c *Catalog) Update(ctx context.Context, id int64, changes ...entity.ProductChange) (*entity.Product, error) {
	c.write.Lock()
	defer c.write.Unlock()
	c.mu.RLock()
	current, ok := c.items.get(id)
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	next, err := entity.ApplyProductChanges(current, changes...)
	if err != nil {
		return nil, fmt.Errorf("producto %d: %w", id, err)
	}
	if err := c.repo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("actualizar producto %d: %w", id, err)
	}
	c.mu.Lock()
	c.index(next)
	c.mu.Unlock()
	c.log.Debug().Int64("product_id", id).Interface("cambios", changes).Msg("producto actualizado")
	return next.Clone(), nil
}

// Delete elimina el producto id. domain.ErrNotFound si no existe.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	c.write.Lock()
	defer c.write.Unlock()
	c.mu.RLock()
	p, ok := c.items.get(id)
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("eliminar producto %d: %w", id, err)
	}
	c.mu.Lock()
	c.items.remove(id)
	key := fold(p.Category)
	c.byCategory[key] = removeID(c.byCategory[key], id)
	if len(c.byCategory[key]) == 0 {
		delete(c.byCategory, key)
		delete(c.categories, key)
	}
	c.mu.Unlock()
	return nil
}

// Get devuelve una copia del producto id.
func (c *Catalog) Get(id int64) (*entity.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.items.get(id)
	if !ok {
		return nil, fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	return p.Clone(), nil
}

// Query devuelve copias de los productos que cumplen el filtro, en orden de alta.
func (c *Catalog) Query(f ProductFilter) []*entity.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*entity.Product
	c.items.each(func(p *entity.Product) bool {
		if f.match(p) {
			out = append(out, p.Clone())
		}
		return true
	})
	return out
}

// All devuelve todos los productos en orden de alta.
func (c *Catalog) All() []*entity.Product {
	return c.Query(ProductFilter{})
}

// Len cantidad de productos.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items.len()
}

// ByCategory productos de una categoría en orden de alta.
func (c *Catalog) ByCategory(category string) []*entity.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.byCategory[fold(category)]
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.items.get(id); ok {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Categories nombres de categoría en orden alfabético.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.categories))
	for _, name := range c.categories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// forgetSupplier refleja en memoria el ON DELETE SET NULL de la persistencia.
func (c *Catalog) forgetSupplier(supplierID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.each(func(p *entity.Product) bool {
		if p.SupplierID != nil && *p.SupplierID == supplierID {
			p.SupplierID = nil
		}
		return true
	})
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
