package actions

import (
	"context"
	"fmt"
	"time"

	"livestock-health/internal/domain/animals"
	"livestock-health/internal/domain/lots"
	"livestock-health/internal/domain/treatments"
)

// Los sources son interfaces angostas que implementan los services de
// cada módulo. El agregador solo necesita estas consultas de lectura.

type LotSource interface {
	ListWithdrawalExpiring(ctx context.Context, farmID string, from, to time.Time) ([]lots.Lot, error)
}

type TreatmentSource interface {
	ListOverdue(ctx context.Context, farmID string, now time.Time) ([]treatments.Treatment, error)
	ListVaccinationsDue(ctx context.Context, farmID string, from, to time.Time) ([]treatments.Treatment, error)
}

type AnimalSource interface {
	ListUnweighedSince(ctx context.Context, farmID string, cutoff time.Time) ([]animals.Animal, error)
	ListSaleReady(ctx context.Context, farmID string, minKg float64) ([]animals.Animal, error)
}

// Cada collector es una lectura independiente y sin efectos: devuelve
// cero o más acciones (cero matches es normal, no un error) y no asume
// que los demás corrieron.

// collectWithdrawalExpiry: lotes con ventana de supresión cerrando en
// [now, now+N días] y no completados. Es la categoría de mayor severidad
// del feed: vender antes del cierre es un incumplimiento.
func collectWithdrawalExpiry(ctx context.Context, src LotSource, farmID string, now time.Time, cfg Config) ([]Action, error) {
	to := now.AddDate(0, 0, cfg.WithdrawalCriticalDays)
	items, err := src.ListWithdrawalExpiring(ctx, farmID, now, to)
	if err != nil {
		return nil, fmt.Errorf("withdrawal expiry: %w", err)
	}

	out := make([]Action, 0, len(items))
	for _, l := range items {
		if l.Completed || l.WithdrawalEndDate == nil {
			continue
		}
		out = append(out, Action{
			ID:            "withdrawal-expiry:" + l.ID,
			Type:          "withdrawal_expiry",
			Priority:      PriorityCritical,
			Category:      CategoryUrgent,
			Title:         "Ventana de supresión por cerrar",
			Description:   fmt.Sprintf("El lote %s sale de supresión el %s. No vender animales del lote antes de esa fecha.", l.Name, l.WithdrawalEndDate.Format("2006-01-02")),
			AffectedCount: 1,
			DueDate:       l.WithdrawalEndDate,
			URL:           fmt.Sprintf("/farms/%s/lots/%s", farmID, l.ID),
		})
	}
	return out, nil
}

// collectOverdueTreatments: tratamientos con próxima dosis vencida y no
// completados.
func collectOverdueTreatments(ctx context.Context, src TreatmentSource, farmID string, now time.Time) ([]Action, error) {
	items, err := src.ListOverdue(ctx, farmID, now)
	if err != nil {
		return nil, fmt.Errorf("overdue treatments: %w", err)
	}

	out := make([]Action, 0, len(items))
	for _, t := range items {
		out = append(out, Action{
			ID:            "overdue-treatment:" + t.ID,
			Type:          "overdue_treatment",
			Priority:      PriorityCritical,
			Category:      CategoryUrgent,
			Title:         "Tratamiento atrasado",
			Description:   fmt.Sprintf("La próxima dosis venció el %s.", t.NextDueDate.Format("2006-01-02")),
			AffectedCount: 1,
			DueDate:       t.NextDueDate,
			URL:           fmt.Sprintf("/farms/%s/treatments/%s", farmID, t.ID),
		})
	}
	return out, nil
}

// collectUpcomingCare: (a) vacunaciones con próxima dosis dentro del
// horizonte configurado, (b) animales vivos sin pesada reciente.
func collectUpcomingCare(ctx context.Context, trts TreatmentSource, anims AnimalSource, farmID string, now time.Time, cfg Config) ([]Action, error) {
	vaccs, err := trts.ListVaccinationsDue(ctx, farmID, now, now.AddDate(0, 0, cfg.VaccinationDueDays))
	if err != nil {
		return nil, fmt.Errorf("upcoming vaccinations: %w", err)
	}

	out := make([]Action, 0, len(vaccs))
	for _, v := range vaccs {
		out = append(out, Action{
			ID:            "vaccination-due:" + v.ID,
			Type:          "vaccination_due",
			Priority:      PriorityHigh,
			Category:      CategoryThisWeek,
			Title:         "Vacunación próxima",
			Description:   fmt.Sprintf("Próxima dosis el %s.", v.NextDueDate.Format("2006-01-02")),
			AffectedCount: 1,
			DueDate:       v.NextDueDate,
			URL:           fmt.Sprintf("/farms/%s/treatments/%s", farmID, v.ID),
		})
	}

	stale, err := anims.ListUnweighedSince(ctx, farmID, now.AddDate(0, 0, -cfg.WeighingStaleDays))
	if err != nil {
		return nil, fmt.Errorf("stale weighings: %w", err)
	}
	if len(stale) > 0 {
		// Una sola acción agregada: el operador pesa en tanda, no de a uno.
		out = append(out, Action{
			ID:            "weighing-stale:" + farmID,
			Type:          "weighing_stale",
			Priority:      PriorityMedium,
			Category:      CategoryThisWeek,
			Title:         "Animales sin pesada reciente",
			Description:   fmt.Sprintf("%d animales vivos sin pesada en los últimos %d días.", len(stale), cfg.WeighingStaleDays),
			AffectedCount: len(stale),
			URL:           fmt.Sprintf("/farms/%s/animals", farmID),
		})
	}
	return out, nil
}

// collectOpportunities: animales vivos cuya última pesada alcanza el
// umbral de venta.
func collectOpportunities(ctx context.Context, src AnimalSource, farmID string, cfg Config) ([]Action, error) {
	ready, err := src.ListSaleReady(ctx, farmID, cfg.SaleReadyWeightKg)
	if err != nil {
		return nil, fmt.Errorf("sale ready: %w", err)
	}
	if len(ready) == 0 {
		return nil, nil
	}

	return []Action{{
		ID:            "sale-ready:" + farmID,
		Type:          "sale_ready",
		Priority:      PrioritySuccess,
		Category:      CategoryOpportunities,
		Title:         "Animales listos para venta",
		Description:   fmt.Sprintf("%d animales superan los %.0f kg.", len(ready), cfg.SaleReadyWeightKg),
		AffectedCount: len(ready),
		URL:           fmt.Sprintf("/farms/%s/animals?sale_ready=true", farmID),
	}}, nil
}
