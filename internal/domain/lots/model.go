package lots

import "time"

// Lot agrupa animales que comparten contexto de tratamiento y ventana de
// supresión. Su WithdrawalEndDate bloquea la venta/salida de sus animales
// hasta que la ventana cierra: es el ancla de cumplimiento que consume el
// feed de acciones.
type Lot struct {
	ID     string
	FarmID string

	Name      string
	StartDate time.Time
	EndDate   *time.Time

	WithdrawalEndDate *time.Time
	Completed         bool

	// Version para concurrencia optimista en Complete/SetWithdrawalEnd.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WithdrawalActive indica si la ventana de supresión del lote está
// abierta: fecha seteada, en el futuro, y lote no completado.
func (l Lot) WithdrawalActive(now time.Time) bool {
	if l.Completed || l.WithdrawalEndDate == nil {
		return false
	}
	return l.WithdrawalEndDate.After(now)
}
