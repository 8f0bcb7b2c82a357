package treatments

// Kind distingue tratamientos de vacunaciones (las vacunaciones alimentan
// el detector de próximas dosis del feed de acciones).
type Kind string

const (
	KindTreatment   Kind = "treatment"
	KindVaccination Kind = "vaccination"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// WithdrawalSource deja visible cómo se obtuvo (o por qué falta) la fecha
// de supresión: nunca se defaultea en silencio a cero días.
type WithdrawalSource string

const (
	// WithdrawalAuto: calculada desde la indicación resuelta.
	WithdrawalAuto WithdrawalSource = "auto"
	// WithdrawalManual: provista explícitamente por el caller.
	WithdrawalManual WithdrawalSource = "manual"
	// WithdrawalNone: sin indicación resuelta y sin fecha manual; el
	// evento queda sin seguimiento de supresión y así se muestra.
	WithdrawalNone WithdrawalSource = "none"
)
