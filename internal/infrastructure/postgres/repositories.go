package postgres

import "github.com/jhoicas/abarroteria/internal/domain/repository"

// Repositories construye los adaptadores sobre q (pool o tx).
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
