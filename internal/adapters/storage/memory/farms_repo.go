package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"livestock-health/internal/domain/farms"
)

var (
	ErrNotFound = errors.New("not found")
)

type farmRepo struct {
	mu   sync.RWMutex
	byID map[string]farms.Farm
}

func NewFarmRepo() farms.Repository {
	return &farmRepo{
		byID: make(map[string]farms.Farm),
	}
}

func (r *farmRepo) Create(ctx context.Context, f farms.Farm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.ID == "" {
		return errors.New("farm id required")
	}
	if _, exists := r.byID[f.ID]; exists {
		return errors.New("farm already exists")
	}

	r.byID[f.ID] = f
	return nil
}

func (r *farmRepo) GetByID(ctx context.Context, id string) (farms.Farm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]
	if !ok {
		return farms.Farm{}, ErrNotFound
	}
	return f, nil
}

func (r *farmRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]farms.Farm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]farms.Farm, 0)
	for _, f := range r.byID {
		if f.OwnerUserID == ownerUserID {
			out = append(out, f)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
