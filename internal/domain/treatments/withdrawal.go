package treatments

import (
	"time"

	"livestock-health/internal/domain/indications"
)

// ComputeWithdrawal calcula la fecha de fin de supresión: fecha del
// tratamiento + días calendario (no hábiles). days == 0 cierra la
// ventana el mismo día, que es un estado válido.
func ComputeWithdrawal(treatmentDate time.Time, days int) time.Time {
	return treatmentDate.AddDate(0, 0, days)
}

// WithdrawalPlan es el resultado de resolver indicación + ventanas para
// un contexto de tratamiento. Indication == nil significa "sin guía
// regulatoria": no se puede calcular supresión automática.
type WithdrawalPlan struct {
	Indication *indications.Indication
	Tier       string
	Fallback   bool

	// Ventanas independientes. MeatEndDate siempre se calcula si hay
	// indicación (0 días = cierra el mismo día); MilkEndDate solo si la
	// indicación define período de leche.
	MeatEndDate *time.Time
	MilkEndDate *time.Time
}

// planFromResolution arma las dos ventanas a partir de la indicación
// resuelta. Carne y leche se calculan por separado: un tratamiento puede
// cargar dos ventanas de cumplimiento distintas.
func planFromResolution(res indications.Resolution, treatmentDate time.Time) WithdrawalPlan {
	ind := res.Indication
	plan := WithdrawalPlan{
		Indication: &ind,
		Tier:       res.Tier,
		Fallback:   res.Fallback,
	}

	meat := ComputeWithdrawal(treatmentDate, ind.WithdrawalMeatDays)
	plan.MeatEndDate = &meat

	if ind.WithdrawalMilkDays > 0 {
		milk := ComputeWithdrawal(treatmentDate, ind.WithdrawalMilkDays)
		plan.MilkEndDate = &milk
	}

	return plan
}
