package farms

import "time"

// Farm representa una explotación ganadera registrada en el sistema.
// Todos los módulos farm-owned (animales, tratamientos, lotes) se
// aíslan por FarmID.
type Farm struct {
	ID          string
	OwnerUserID string

	Name        string
	CountryCode string // ISO-3166 alpha-2, ej: "DZ", "AR"

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
