package farms

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
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
	Name        string
	CountryCode string
	Notes       string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Farm, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Farm{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Farm{}, ErrInvalidInput
	}

	cc := strings.ToUpper(strings.TrimSpace(in.CountryCode))
	if cc != "" && len(cc) != 2 {
		return Farm{}, ErrInvalidInput
	}

	now := s.now()
	f := Farm{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		CountryCode: cc,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return Farm{}, err
	}
	return f, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Farm, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Farm, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}
