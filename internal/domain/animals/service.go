package animals

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
	ErrBadState     = errors.New("invalid state")
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
	Tag       string
	SpeciesID string
	Breed     string
	Sex       Sex
	BirthDate *time.Time
	LotID     string
}

func (s *Service) Create(ctx context.Context, farmID string, in CreateInput) (Animal, error) {
	if strings.TrimSpace(farmID) == "" {
		return Animal{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Tag) == "" {
		return Animal{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.SpeciesID) == "" {
		return Animal{}, ErrInvalidInput
	}

	sex := in.Sex
	if sex == "" {
		sex = SexUnknown
	}

	now := s.now()
	a := Animal{
		ID:        uuid.NewString(),
		FarmID:    strings.TrimSpace(farmID),
		LotID:     strings.TrimSpace(in.LotID),
		Tag:       strings.TrimSpace(in.Tag),
		SpeciesID: strings.TrimSpace(in.SpeciesID),
		Breed:     strings.TrimSpace(in.Breed),
		Sex:       sex,
		BirthDate: in.BirthDate,
		Status:    StatusAlive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByFarm(ctx context.Context, farmID string, filter ListFilter) ([]Animal, error) {
	return s.repo.ListByFarm(ctx, farmID, filter)
}

// SetStatus cambia el estado de vida del animal. alive es terminal hacia
// sold/dead/slaughtered; no se permite "revivir".
func (s *Service) SetStatus(ctx context.Context, id string, status AnimalStatus) (Animal, error) {
	switch status {
	case StatusAlive, StatusSold, StatusDead, StatusSlaughtered:
	default:
		return Animal{}, ErrInvalidInput
	}

	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	if a.Status == status {
		return a, nil // idempotente
	}
	if a.Status != StatusAlive {
		return Animal{}, ErrBadState
	}

	a.Status = status
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// AssignLot asocia el animal a un lote (o lo desasocia con lotID vacío).
func (s *Service) AssignLot(ctx context.Context, id, lotID string) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	a.LotID = strings.TrimSpace(lotID)
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

type RecordWeightInput struct {
	WeightKg   float64
	MeasuredAt time.Time
}

func (s *Service) RecordWeight(ctx context.Context, animalID string, in RecordWeightInput) (WeightRecord, error) {
	if in.WeightKg <= 0 {
		return WeightRecord{}, ErrInvalidInput
	}

	a, err := s.GetByID(ctx, animalID)
	if err != nil {
		return WeightRecord{}, err
	}

	measuredAt := in.MeasuredAt
	if measuredAt.IsZero() {
		measuredAt = s.now()
	}

	w := WeightRecord{
		ID:         uuid.NewString(),
		FarmID:     a.FarmID,
		AnimalID:   a.ID,
		WeightKg:   in.WeightKg,
		MeasuredAt: measuredAt,
	}

	if err := s.repo.RecordWeight(ctx, w); err != nil {
		return WeightRecord{}, err
	}
	return w, nil
}

func (s *Service) LastWeight(ctx context.Context, animalID string) (WeightRecord, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return WeightRecord{}, ErrInvalidInput
	}
	return s.repo.LastWeight(ctx, animalID)
}

// ListUnweighedSince / ListSaleReady exponen las consultas que consumen
// los collectors del feed de acciones.

func (s *Service) ListUnweighedSince(ctx context.Context, farmID string, cutoff time.Time) ([]Animal, error) {
	return s.repo.ListUnweighedSince(ctx, farmID, cutoff)
}

func (s *Service) ListSaleReady(ctx context.Context, farmID string, minKg float64) ([]Animal, error) {
	return s.repo.ListSaleReady(ctx, farmID, minKg)
}
