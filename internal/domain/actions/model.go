package actions

import "time"

// Priority es la severidad de una acción. El orden de rank es fijo:
// critical < high < medium < low < success.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
	PrioritySuccess  Priority = "success"
)

// priorityRank define el orden total del feed. Una prioridad desconocida
// va al final.
func priorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	case PrioritySuccess:
		return 4
	default:
		return 5
	}
}

// Category agrupa acciones para el dashboard y para el filtro de urgencia.
type Category string

const (
	CategoryUrgent        Category = "urgent"
	CategoryThisWeek      Category = "this_week"
	CategoryPlanned       Category = "planned"
	CategoryOpportunities Category = "opportunities"
)

func ValidCategory(c Category) bool {
	switch c {
	case CategoryUrgent, CategoryThisWeek, CategoryPlanned, CategoryOpportunities:
		return true
	}
	return false
}

// Action es un value object transitorio: se recalcula en cada request y
// nunca se persiste.
type Action struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Priority Priority `json:"priority"`
	Category Category `json:"category"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	AffectedCount int        `json:"affected_count"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	URL           string     `json:"url,omitempty"`
}

// Summary son los contadores por categoría del feed SIN filtrar: los
// badges del dashboard son globales aunque la lista venga filtrada.
type Summary struct {
	Urgent        int `json:"urgent"`
	ThisWeek      int `json:"this_week"`
	Planned       int `json:"planned"`
	Opportunities int `json:"opportunities"`
}

// Feed es la respuesta del agregador.
type Feed struct {
	Summary Summary  `json:"summary"`
	Actions []Action `json:"actions"`
}

// Config parametriza los collectors. Va explícita en la construcción del
// agregador (no se lee de env adentro del motor) para mantenerlo puro y
// testeable.
type Config struct {
	// WithdrawalCriticalDays: ventanas de supresión que cierran dentro de
	// esta cantidad de días entran como críticas.
	WithdrawalCriticalDays int

	// VaccinationDueDays: horizonte de "próximas vacunaciones".
	VaccinationDueDays int

	// WeighingStaleDays: días sin pesada tras los cuales un animal vivo
	// se considera sin control de peso.
	WeighingStaleDays int

	// SaleReadyWeightKg: umbral de peso para marcar un animal como listo
	// para venta.
	SaleReadyWeightKg float64
}

func DefaultConfig() Config {
	return Config{
		WithdrawalCriticalDays: 3,
		VaccinationDueDays:     7,
		WeighingStaleDays:      30,
		SaleReadyWeightKg:      500,
	}
}
