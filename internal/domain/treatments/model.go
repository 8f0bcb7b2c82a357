package treatments

import "time"

// Treatment es un evento sanitario (tratamiento o vacunación) aplicado a
// un animal o a un lote completo.
type Treatment struct {
	ID     string
	FarmID string

	AnimalID string // opcional si LotID está presente
	LotID    string // opcional

	ProductID    string
	IndicationID string // opcional: indicación resuelta al crear

	Kind Kind
	Date time.Time

	Dose     float64
	DoseUnit string

	// WithdrawalEndDate es el campo legacy de ventana única: por
	// convención guarda la fecha de carne cuando se calcula automático.
	WithdrawalEndDate *time.Time
	WithdrawalSource  WithdrawalSource

	NextDueDate *time.Time // próxima dosis / control

	Status Status
	Notes  string

	// Version para concurrencia optimista en Complete.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}
