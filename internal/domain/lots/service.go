package lots

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrVersionConflict: la escritura chocó con un update concurrente.
	ErrVersionConflict = errors.New("version conflict")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name      string
	StartDate time.Time
	EndDate   *time.Time
}

func (s *Service) Create(ctx context.Context, farmID string, in CreateInput) (Lot, error) {
	if strings.TrimSpace(farmID) == "" {
		return Lot{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Lot{}, ErrInvalidInput
	}

	start := in.StartDate
	if start.IsZero() {
		start = s.now()
	}
	if in.EndDate != nil && in.EndDate.Before(start) {
		return Lot{}, ErrInvalidInput
	}

	now := s.now()
	l := Lot{
		ID:        uuid.NewString(),
		FarmID:    strings.TrimSpace(farmID),
		Name:      strings.TrimSpace(in.Name),
		StartDate: start,
		EndDate:   in.EndDate,
		Completed: false,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return Lot{}, err
	}
	return l, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Lot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Lot{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByFarm(ctx context.Context, farmID string) ([]Lot, error) {
	return s.repo.ListByFarm(ctx, farmID)
}

// SetWithdrawalEnd fija (o extiende) la ventana de supresión del lote.
// Regla conservadora: nunca acorta una ventana existente; si la nueva
// fecha es anterior a la vigente, se conserva la vigente.
func (s *Service) SetWithdrawalEnd(ctx context.Context, id string, expectedVersion int, end time.Time) (Lot, error) {
	id = strings.TrimSpace(id)
	if id == "" || expectedVersion <= 0 || end.IsZero() {
		return Lot{}, ErrInvalidInput
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Lot{}, ErrNotFound
	}

	if l.WithdrawalEndDate != nil && l.WithdrawalEndDate.After(end) {
		return l, nil
	}

	l.WithdrawalEndDate = &end
	l.Version = expectedVersion + 1
	l.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, l, expectedVersion); err != nil {
		return Lot{}, err
	}
	return l, nil
}

// Complete cierra el lote: deja de participar en las alertas de
// supresión. Idempotente.
func (s *Service) Complete(ctx context.Context, id string, expectedVersion int) (Lot, error) {
	id = strings.TrimSpace(id)
	if id == "" || expectedVersion <= 0 {
		return Lot{}, ErrInvalidInput
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Lot{}, ErrNotFound
	}

	if l.Completed {
		return l, nil
	}

	now := s.now()
	l.Completed = true
	if l.EndDate == nil {
		l.EndDate = &now
	}
	l.Version = expectedVersion + 1
	l.UpdatedAt = now

	if err := s.repo.Update(ctx, l, expectedVersion); err != nil {
		return Lot{}, err
	}
	return l, nil
}

// ListWithdrawalExpiring expone la consulta que consume el collector de
// ventanas por vencer del feed de acciones.
func (s *Service) ListWithdrawalExpiring(ctx context.Context, farmID string, from, to time.Time) ([]Lot, error) {
	return s.repo.ListWithdrawalExpiring(ctx, farmID, from, to)
}
