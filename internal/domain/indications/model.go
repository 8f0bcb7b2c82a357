package indications

import "time"

type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted" // soft delete: conserva histórico
)

// Indication es una regla regulatoria de dosificación y supresión para
// una combinación producto/especie/vía, opcionalmente refinada por país
// y categoría de edad. CountryCode/AgeCategoryID vacíos = aplica a todos.
type Indication struct {
	ID string

	ProductID string
	SpeciesID string
	RouteID   string

	CountryCode   string // opcional
	AgeCategoryID string // opcional

	DoseMin  float64
	DoseMax  float64
	DoseUnit string // "ml/50kg", "mg/kg", etc.

	ProtocolDays int // duración del protocolo de tratamiento

	// Períodos de supresión independientes (días calendario).
	WithdrawalMeatDays int
	WithdrawalMilkDays int

	Status Status

	// Version para concurrencia optimista: el caller manda la versión que
	// leyó; si no coincide con la almacenada, el update es conflicto.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}
