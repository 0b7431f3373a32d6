package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/domain/repository"
)

var (
	_ repository.ProductRepository     = (*ProductRepo)(nil)
	_ repository.ClientRepository      = (*ClientRepo)(nil)
	_ repository.SupplierRepository    = (*SupplierRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
	_ repository.MovementRepository    = (*MovementRepo)(nil)
	_ repository.RotationRepository    = (*RotationRepo)(nil)
)

func sortedKeys[T any](m map[int64]T) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ProductRepo productos en memoria.
type ProductRepo struct{ db *DB }

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if err := r.db.begin(ctx, OpProductCreate); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if p.SupplierID != nil {
		if _, ok := r.db.suppliers[*p.SupplierID]; !ok {
			return fmt.Errorf("%w: proveedor %d inexistente", domain.ErrInvalidInput, *p.SupplierID)
		}
	}
	p.ID = r.db.id("products")
	r.db.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	if err := r.db.begin(ctx, OpProductUpdate); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[p.ID]; !ok {
		return notFound("producto", p.ID)
	}
	r.db.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.begin(ctx, OpProductDelete); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[id]; !ok {
		return notFound("producto", id)
	}
	delete(r.db.products, id)
	kept := r.db.rotations[:0]
	for _, rot := range r.db.rotations {
		if rot.ProductID != id {
			kept = append(kept, rot)
		}
	}
	r.db.rotations = kept
	return nil
}

func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	if err := r.db.begin(ctx, OpList); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.db.products))
	for _, id := range sortedKeys(r.db.products) {
		out = append(out, r.db.products[id].Clone())
	}
	return out, nil
}

// ClientRepo clientes en memoria.
type ClientRepo struct{ db *DB }

func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	if err := r.db.begin(ctx, OpClientCreate); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	c.ID = r.db.id("clients")
	r.db.clients[c.ID] = c.Clone()
	return nil
}

func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	if err := r.db.begin(ctx, OpClientUpdate); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.clients[c.ID]; !ok {
		return notFound("cliente", c.ID)
	}
	r.db.clients[c.ID] = c.Clone()
	return nil
}

// Delete borra el cliente, sus transacciones y los movimientos de estas (ON DELETE CASCADE).
func (r *ClientRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.begin(ctx, OpClientDelete); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.clients[id]; !ok {
		return notFound("cliente", id)
	}
	delete(r.db.clients, id)
	for txID, t := range r.db.transactions {
		if t.ClientID != id {
			continue
		}
		delete(r.db.transactions, txID)
		for mID, m := range r.db.movements {
			if m.TransactionID == txID {
				delete(r.db.movements, mID)
			}
		}
	}
	return nil
}

func (r *ClientRepo) List(ctx context.Context) ([]*entity.Client, error) {
	if err := r.db.begin(ctx, OpList); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	out := make([]*entity.Client, 0, len(r.db.clients))
	for _, id := range sortedKeys(r.db.clients) {
		out = append(out, r.db.clients[id].Clone())
	}
	return out, nil
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ db *DB }

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	if err := r.db.begin(ctx, OpSupplierCreate); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	s.ID = r.db.id("suppliers")
	r.db.suppliers[s.ID] = s.Clone()
	return nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	if err := r.db.begin(ctx, OpSupplierUpdate); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.suppliers[s.ID]; !ok {
		return notFound("proveedor", s.ID)
	}
	r.db.suppliers[s.ID] = s.Clone()
	return nil
}

// Delete borra el proveedor y deja en nil las referencias (ON DELETE SET NULL).
func (r *SupplierRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.begin(ctx, OpSupplierDelete); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.suppliers[id]; !ok {
		return notFound("proveedor", id)
	}
	delete(r.db.suppliers, id)
	for _, p := range r.db.products {
		if p.SupplierID != nil && *p.SupplierID == id {
			p.SupplierID = nil
		}
	}
	for _, t := range r.db.transactions {
		if t.SupplierID != nil && *t.SupplierID == id {
			t.SupplierID = nil
		}
	}
	return nil
}

func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	if err := r.db.begin(ctx, OpList); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	out := make([]*entity.Supplier, 0, len(r.db.suppliers))
	for _, id := range sortedKeys(r.db.suppliers) {
		out = append(out, r.db.suppliers[id].Clone())
	}
	return out, nil
}

// TransactionRepo transacciones en memoria.
type TransactionRepo struct{ db *DB }

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	if err := r.db.begin(ctx, OpTransactionCreate); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.clients[t.ClientID]; !ok {
		return fmt.Errorf("%w: cliente %d inexistente", domain.ErrInvalidInput, t.ClientID)
	}
	t.ID = r.db.id("transactions")
	r.db.transactions[t.ID] = t.Clone()
	return nil
}

func (r *TransactionRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if err := r.db.begin(ctx, OpTransactionUpdate); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	t, ok := r.db.transactions[id]
	if !ok {
		return notFound("transacción", id)
	}
	t.Status = status
	return nil
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.begin(ctx, OpTransactionDelete); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.transactions[id]; !ok {
		return notFound("transacción", id)
	}
	delete(r.db.transactions, id)
	for mID, m := range r.db.movements {
		if m.TransactionID == id {
			delete(r.db.movements, mID)
		}
	}
	return nil
}

func (r *TransactionRepo) List(ctx context.Context) ([]*entity.Transaction, error) {
	if err := r.db.begin(ctx, OpList); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	out := make([]*entity.Transaction, 0, len(r.db.transactions))
	for _, id := range sortedKeys(r.db.transactions) {
		out = append(out, r.db.transactions[id].Clone())
	}
	return out, nil
}

// MovementRepo movimientos en memoria.
type MovementRepo struct{ db *DB }

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if err := r.db.begin(ctx, OpMovementCreate); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.transactions[m.TransactionID]; !ok {
		return fmt.Errorf("%w: transacción %d inexistente", domain.ErrInvalidInput, m.TransactionID)
	}
	m.ID = r.db.id("movements")
	r.db.movements[m.ID] = m.Clone()
	return nil
}

func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.begin(ctx, OpMovementDelete); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.movements[id]; !ok {
		return notFound("movimiento", id)
	}
	delete(r.db.movements, id)
	return nil
}

func (r *MovementRepo) List(ctx context.Context) ([]*entity.Movement, error) {
	if err := r.db.begin(ctx, OpList); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	out := make([]*entity.Movement, 0, len(r.db.movements))
	for _, id := range sortedKeys(r.db.movements) {
		out = append(out, r.db.movements[id].Clone())
	}
	return out, nil
}

// RotationRepo historial de rotaciones en memoria.
type RotationRepo struct{ db *DB }

func (r *RotationRepo) Record(ctx context.Context, rot entity.Rotation) error {
	if err := r.db.begin(ctx, OpRotationRecord); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[rot.ProductID]; !ok {
		return fmt.Errorf("%w: producto %d inexistente", domain.ErrInvalidInput, rot.ProductID)
	}
	r.db.rotations = append(r.db.rotations, rot)
	return nil
}

func (r *RotationRepo) ListByProduct(ctx context.Context, productID int64) ([]entity.Rotation, error) {
	if err := r.db.begin(ctx, OpList); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	var out []entity.Rotation
	for _, rot := range r.db.rotations {
		if rot.ProductID == productID {
			out = append(out, rot)
		}
	}
	return out, nil
}
