package entity

import "time"

// Tipos de ventana de rotación.
const (
	RotationExpiration = "expiracion"
	RotationSeasonal   = "temporada"
	RotationForced     = "forzada"
)

// Rotation ventana en la que un producto estuvo sujeto a una rebaja.
type Rotation struct {
	ProductID int64
	Start     time.Time
	End       time.Time
	Type      string
}
