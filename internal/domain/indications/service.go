package indications

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
	ErrDuplicate    = errors.New("duplicate indication")

	// ErrVersionConflict: la escritura chocó con un update concurrente.
	// El caller debe releer y reaplicar; no reintentamos internamente.
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
	ProductID     string
	SpeciesID     string
	RouteID       string
	CountryCode   string
	AgeCategoryID string

	DoseMin  float64
	DoseMax  float64
	DoseUnit string

	ProtocolDays       int
	WithdrawalMeatDays int
	WithdrawalMilkDays int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Indication, error) {
	productID := strings.TrimSpace(in.ProductID)
	speciesID := strings.TrimSpace(in.SpeciesID)
	routeID := strings.TrimSpace(in.RouteID)

	if productID == "" || speciesID == "" || routeID == "" {
		return Indication{}, ErrInvalidInput
	}
	if in.DoseMin < 0 || in.DoseMax < in.DoseMin {
		return Indication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.DoseUnit) == "" {
		return Indication{}, ErrInvalidInput
	}
	// Días negativos producirían fechas de supresión anteriores al
	// tratamiento; se rechazan acá para que el calculador nunca los vea.
	if in.ProtocolDays < 0 || in.WithdrawalMeatDays < 0 || in.WithdrawalMilkDays < 0 {
		return Indication{}, ErrInvalidInput
	}

	cc := strings.ToUpper(strings.TrimSpace(in.CountryCode))
	ageCat := strings.TrimSpace(in.AgeCategoryID)

	// Invariante: dos indicaciones activas no pueden compartir la
	// 5-tupla completa (producto, especie, vía, país, edad).
	existing, err := s.repo.ListActive(ctx, productID, speciesID, routeID)
	if err != nil {
		return Indication{}, err
	}
	for _, e := range existing {
		if e.CountryCode == cc && e.AgeCategoryID == ageCat {
			return Indication{}, ErrDuplicate
		}
	}

	now := s.now()
	ind := Indication{
		ID:                 uuid.NewString(),
		ProductID:          productID,
		SpeciesID:          speciesID,
		RouteID:            routeID,
		CountryCode:        cc,
		AgeCategoryID:      ageCat,
		DoseMin:            in.DoseMin,
		DoseMax:            in.DoseMax,
		DoseUnit:           strings.TrimSpace(in.DoseUnit),
		ProtocolDays:       in.ProtocolDays,
		WithdrawalMeatDays: in.WithdrawalMeatDays,
		WithdrawalMilkDays: in.WithdrawalMilkDays,
		Status:             StatusActive,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, ind); err != nil {
		return Indication{}, err
	}
	return ind, nil
}

type UpdateInput struct {
	DoseMin  float64
	DoseMax  float64
	DoseUnit string

	ProtocolDays       int
	WithdrawalMeatDays int
	WithdrawalMilkDays int
}

// Update modifica los campos de dosificación/supresión con CAS sobre la
// versión que el caller leyó. Las dimensiones de matching (producto,
// especie, vía, país, edad) son inmutables: para cambiarlas se borra y
// se crea una indicación nueva.
func (s *Service) Update(ctx context.Context, id string, expectedVersion int, in UpdateInput) (Indication, error) {
	id = strings.TrimSpace(id)
	if id == "" || expectedVersion <= 0 {
		return Indication{}, ErrInvalidInput
	}
	if in.DoseMin < 0 || in.DoseMax < in.DoseMin || strings.TrimSpace(in.DoseUnit) == "" {
		return Indication{}, ErrInvalidInput
	}
	if in.ProtocolDays < 0 || in.WithdrawalMeatDays < 0 || in.WithdrawalMilkDays < 0 {
		return Indication{}, ErrInvalidInput
	}

	ind, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Indication{}, ErrNotFound
	}
	if ind.Status == StatusDeleted {
		return Indication{}, ErrNotFound
	}

	ind.DoseMin = in.DoseMin
	ind.DoseMax = in.DoseMax
	ind.DoseUnit = strings.TrimSpace(in.DoseUnit)
	ind.ProtocolDays = in.ProtocolDays
	ind.WithdrawalMeatDays = in.WithdrawalMeatDays
	ind.WithdrawalMilkDays = in.WithdrawalMilkDays
	ind.Version = expectedVersion + 1
	ind.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, ind, expectedVersion); err != nil {
		return Indication{}, err
	}
	return ind, nil
}

// SoftDelete marca la indicación como borrada (deja de participar en la
// resolución pero conserva histórico).
func (s *Service) SoftDelete(ctx context.Context, id string, expectedVersion int) error {
	id = strings.TrimSpace(id)
	if id == "" || expectedVersion <= 0 {
		return ErrInvalidInput
	}

	ind, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if ind.Status == StatusDeleted {
		return nil // idempotente
	}

	ind.Status = StatusDeleted
	ind.Version = expectedVersion + 1
	ind.UpdatedAt = s.now()

	return s.repo.Update(ctx, ind, expectedVersion)
}

func (s *Service) GetByID(ctx context.Context, id string) (Indication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Indication{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]Indication, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByProduct(ctx, productID)
}

// Resolve carga los candidatos activos para (producto, especie, vía) y
// aplica la cascada de especificidad. found=false significa "sin guía
// regulatoria": el caller decide si exige dosis manual.
func (s *Service) Resolve(ctx context.Context, q ResolveQuery) (Resolution, bool, error) {
	if strings.TrimSpace(q.ProductID) == "" ||
		strings.TrimSpace(q.SpeciesID) == "" ||
		strings.TrimSpace(q.RouteID) == "" {
		return Resolution{}, false, ErrInvalidInput
	}

	candidates, err := s.repo.ListActive(ctx, q.ProductID, q.SpeciesID, q.RouteID)
	if err != nil {
		return Resolution{}, false, err
	}

	res, ok := Resolve(q, candidates)
	return res, ok, nil
}
