package animals

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)
	ListByFarm(ctx context.Context, farmID string, filter ListFilter) ([]Animal, error)

	RecordWeight(ctx context.Context, w WeightRecord) error
	LastWeight(ctx context.Context, animalID string) (WeightRecord, error)

	// ListUnweighedSince devuelve animales vivos de la explotación sin
	// ninguna pesada posterior a cutoff (incluye los nunca pesados).
	ListUnweighedSince(ctx context.Context, farmID string, cutoff time.Time) ([]Animal, error)

	// ListSaleReady devuelve animales vivos cuya última pesada es >= minKg.
	ListSaleReady(ctx context.Context, farmID string, minKg float64) ([]Animal, error)
}

type ListFilter struct {
	Status AnimalStatus
	LotID  string
	Limit  int
}
