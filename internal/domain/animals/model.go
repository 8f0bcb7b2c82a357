package animals

import "time"

// AnimalStatus define el ciclo de vida del animal.
// @Enum alive, sold, dead, slaughtered
type AnimalStatus string

const (
	StatusAlive       AnimalStatus = "alive"
	StatusSold        AnimalStatus = "sold"
	StatusDead        AnimalStatus = "dead"
	StatusSlaughtered AnimalStatus = "slaughtered"
)

// Sex define el sexo del animal.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Animal representa una cabeza de ganado de una explotación.
type Animal struct {
	ID     string
	FarmID string
	LotID  string // opcional: lote al que pertenece

	Tag       string // caravana / identificador oficial
	SpeciesID string
	Breed     string
	Sex       Sex

	BirthDate *time.Time

	Status AnimalStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WeightRecord es una pesada individual. La última pesada de cada animal
// alimenta los detectores de pesaje atrasado y de venta lista.
type WeightRecord struct {
	ID       string
	FarmID   string
	AnimalID string

	WeightKg   float64
	MeasuredAt time.Time
}
