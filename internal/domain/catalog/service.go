package catalog

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

type CreateProductInput struct {
	Name string
	Type ProductType
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Product{}, ErrInvalidInput
	}
	switch in.Type {
	case ProductTypeDrug, ProductTypeVaccine, ProductTypeOther:
	default:
		return Product{}, ErrInvalidInput
	}

	now := s.now()
	p := Product{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) GetProductByID(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrInvalidInput
	}
	return s.repo.GetProductByID(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	return s.repo.ListProducts(ctx, onlyActive)
}

// SetProductActive activa/retira un producto del catálogo (no borra).
func (s *Service) SetProductActive(ctx context.Context, id string, active bool) (Product, error) {
	p, err := s.GetProductByID(ctx, id)
	if err != nil {
		return Product{}, err
	}

	if p.Active == active {
		return p, nil // idempotente
	}

	p.Active = active
	p.UpdatedAt = s.now()
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) GetSpeciesByID(ctx context.Context, id string) (Species, error) {
	return s.repo.GetSpeciesByID(ctx, id)
}

func (s *Service) ListSpecies(ctx context.Context) ([]Species, error) {
	return s.repo.ListSpecies(ctx)
}

func (s *Service) GetRouteByID(ctx context.Context, id string) (Route, error) {
	return s.repo.GetRouteByID(ctx, id)
}

func (s *Service) ListRoutes(ctx context.Context) ([]Route, error) {
	return s.repo.ListRoutes(ctx)
}

func (s *Service) GetAgeCategoryByID(ctx context.Context, id string) (AgeCategory, error) {
	return s.repo.GetAgeCategoryByID(ctx, id)
}

func (s *Service) ListAgeCategories(ctx context.Context, speciesID string) ([]AgeCategory, error) {
	return s.repo.ListAgeCategories(ctx, speciesID)
}
