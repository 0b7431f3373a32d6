package repository

// Repositories agrupa los puertos de persistencia de un mismo backend.
type Repositories struct {
	Products     ProductRepository
	Clients      ClientRepository
	Suppliers    SupplierRepository
	Transactions TransactionRepository
	Movements    MovementRepository
	Rotations    RotationRepository
}
