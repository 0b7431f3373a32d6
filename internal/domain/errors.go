package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")
	// ErrPartialFailure: una parte de la operación quedó aplicada y otra no; no se revierte.
	ErrPartialFailure    = errors.New("fallo parcial")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// IsRecoverable indica si el llamador puede registrar el error y seguir con la siguiente entidad.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrPartialFailure)
}
