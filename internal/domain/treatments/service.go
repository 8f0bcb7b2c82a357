package treatments

import (
	"context"
	"errors"
	"strings"
	"time"

	"livestock-health/internal/domain/indications"
	"livestock-health/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrVersionConflict: la escritura chocó con un update concurrente.
	ErrVersionConflict = errors.New("version conflict")
)

// IndicationResolver abstrae la resolución de indicaciones (lo implementa
// indications.Service; en tests se stubea).
type IndicationResolver interface {
	Resolve(ctx context.Context, q indications.ResolveQuery) (indications.Resolution, bool, error)
}

type Service struct {
	repo     Repository
	resolver IndicationResolver
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, resolver IndicationResolver, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		log:      log,
		now:      time.Now,
	}
}

// PlanInput es el contexto de tratamiento para resolver indicación y
// ventanas de supresión.
type PlanInput struct {
	ProductID     string
	SpeciesID     string
	RouteID       string
	CountryCode   string
	AgeCategoryID string

	TreatmentDate time.Time
}

// PlanWithdrawal resuelve la indicación aplicable y calcula las ventanas
// de carne y leche. Si no hay indicación devuelve un plan vacío (sin
// error): el caller decide si exige fecha manual.
func (s *Service) PlanWithdrawal(ctx context.Context, in PlanInput) (WithdrawalPlan, error) {
	if in.TreatmentDate.IsZero() {
		return WithdrawalPlan{}, ErrInvalidInput
	}

	res, found, err := s.resolver.Resolve(ctx, indications.ResolveQuery{
		ProductID:     in.ProductID,
		SpeciesID:     in.SpeciesID,
		RouteID:       in.RouteID,
		CountryCode:   in.CountryCode,
		AgeCategoryID: in.AgeCategoryID,
	})
	if err != nil {
		return WithdrawalPlan{}, err
	}
	if !found {
		return WithdrawalPlan{}, nil
	}

	if res.Fallback {
		// Match de baja confianza: ningún nivel de la cascada aplicó y
		// se usó el primer candidato. Se deja rastro para auditoría.
		s.log.Warn("indication resolved via fallback", map[string]any{
			"product_id": in.ProductID,
			"species_id": in.SpeciesID,
			"route_id":   in.RouteID,
			"indication": res.Indication.ID,
		})
	}

	return planFromResolution(res, in.TreatmentDate), nil
}

type CreateInput struct {
	AnimalID string
	LotID    string

	ProductID string
	Kind      Kind
	Date      time.Time

	Dose     float64
	DoseUnit string

	NextDueDate *time.Time
	Notes       string

	// Contexto para la resolución automática.
	SpeciesID     string
	RouteID       string
	CountryCode   string
	AgeCategoryID string

	// AutoCalculateWithdrawal: resolver indicación y calcular la ventana.
	// Si es false (o no resuelve), se usa WithdrawalEndDate tal cual.
	AutoCalculateWithdrawal bool
	WithdrawalEndDate       *time.Time
}

// Create registra el evento sanitario. La fecha de supresión nunca se
// inventa: o viene de la indicación resuelta (source=auto), o del caller
// (source=manual), o queda visiblemente ausente (source=none).
func (s *Service) Create(ctx context.Context, farmID string, in CreateInput) (Treatment, WithdrawalPlan, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return Treatment{}, WithdrawalPlan{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return Treatment{}, WithdrawalPlan{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.AnimalID) == "" && strings.TrimSpace(in.LotID) == "" {
		return Treatment{}, WithdrawalPlan{}, ErrInvalidInput
	}
	switch in.Kind {
	case KindTreatment, KindVaccination:
	default:
		return Treatment{}, WithdrawalPlan{}, ErrInvalidInput
	}
	if in.Date.IsZero() {
		return Treatment{}, WithdrawalPlan{}, ErrInvalidInput
	}
	if in.Dose < 0 {
		return Treatment{}, WithdrawalPlan{}, ErrInvalidInput
	}

	now := s.now()
	t := Treatment{
		ID:          uuid.NewString(),
		FarmID:      farmID,
		AnimalID:    strings.TrimSpace(in.AnimalID),
		LotID:       strings.TrimSpace(in.LotID),
		ProductID:   strings.TrimSpace(in.ProductID),
		Kind:        in.Kind,
		Date:        in.Date,
		Dose:        in.Dose,
		DoseUnit:    strings.TrimSpace(in.DoseUnit),
		NextDueDate: in.NextDueDate,
		Status:      StatusActive,
		Notes:       strings.TrimSpace(in.Notes),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var plan WithdrawalPlan
	switch {
	case in.AutoCalculateWithdrawal:
		p, err := s.PlanWithdrawal(ctx, PlanInput{
			ProductID:     in.ProductID,
			SpeciesID:     in.SpeciesID,
			RouteID:       in.RouteID,
			CountryCode:   in.CountryCode,
			AgeCategoryID: in.AgeCategoryID,
			TreatmentDate: in.Date,
		})
		if err != nil {
			return Treatment{}, WithdrawalPlan{}, err
		}
		plan = p

		if plan.Indication != nil {
			// Convención legacy: el campo único guarda la fecha de carne.
			t.IndicationID = plan.Indication.ID
			t.WithdrawalEndDate = plan.MeatEndDate
			t.WithdrawalSource = WithdrawalAuto
		} else {
			// Sin guía regulatoria: omisión visible, nunca cero días.
			t.WithdrawalEndDate = nil
			t.WithdrawalSource = WithdrawalNone
			s.log.Warn("no indication resolved, treatment without withdrawal tracking", map[string]any{
				"farm_id":    farmID,
				"product_id": in.ProductID,
			})
		}

	case in.WithdrawalEndDate != nil:
		if in.WithdrawalEndDate.Before(in.Date) {
			return Treatment{}, WithdrawalPlan{}, ErrInvalidInput
		}
		t.WithdrawalEndDate = in.WithdrawalEndDate
		t.WithdrawalSource = WithdrawalManual

	default:
		t.WithdrawalSource = WithdrawalNone
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return Treatment{}, WithdrawalPlan{}, err
	}
	return t, plan, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Treatment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Treatment{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByFarm(ctx context.Context, farmID string, filter ListFilter) ([]Treatment, error) {
	return s.repo.ListByFarm(ctx, farmID, filter)
}

// Complete marca el tratamiento como completado (sale de los detectores
// de atrasados/próximas dosis). Idempotente, con CAS por versión.
func (s *Service) Complete(ctx context.Context, id string, expectedVersion int) (Treatment, error) {
	id = strings.TrimSpace(id)
	if id == "" || expectedVersion <= 0 {
		return Treatment{}, ErrInvalidInput
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Treatment{}, ErrNotFound
	}

	if t.Status == StatusCompleted {
		return t, nil
	}

	t.Status = StatusCompleted
	t.Version = expectedVersion + 1
	t.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, t, expectedVersion); err != nil {
		return Treatment{}, err
	}
	return t, nil
}

// ListOverdue / ListVaccinationsDue exponen las consultas que consumen
// los collectors del feed de acciones.

func (s *Service) ListOverdue(ctx context.Context, farmID string, now time.Time) ([]Treatment, error) {
	return s.repo.ListOverdue(ctx, farmID, now)
}

func (s *Service) ListVaccinationsDue(ctx context.Context, farmID string, from, to time.Time) ([]Treatment, error) {
	return s.repo.ListVaccinationsDue(ctx, farmID, from, to)
}
