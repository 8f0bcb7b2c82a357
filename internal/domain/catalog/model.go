package catalog

import "time"

// ProductType define los tipos de producto soportados.
// @Enum drug, vaccine, other
type ProductType string

const (
	ProductTypeDrug    ProductType = "drug"
	ProductTypeVaccine ProductType = "vaccine"
	ProductTypeOther   ProductType = "other"
)

// Product representa un producto veterinario del catálogo global
// (dato de referencia, administrado centralmente).
type Product struct {
	ID string

	Name string
	Type ProductType

	// Active permite retirar un producto del catálogo sin borrarlo:
	// los tratamientos históricos siguen referenciándolo.
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Species representa una especie ganadera (dato de referencia, solo lectura).
type Species struct {
	ID   string
	Name string
}

// Route representa una vía de administración (oral, intramuscular, etc.).
type Route struct {
	ID   string
	Code string
	Name string
}

// AgeCategory agrupa animales de una especie por edad (en meses).
// MaxMonths == 0 significa "sin tope" (adultos).
type AgeCategory struct {
	ID        string
	SpeciesID string
	Name      string
	MinMonths int
	MaxMonths int
}
