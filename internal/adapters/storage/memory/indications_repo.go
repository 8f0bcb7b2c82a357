package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"livestock-health/internal/domain/indications"
)

type indicationRepo struct {
	mu   sync.RWMutex
	byID map[string]indications.Indication

	// seq preserva el orden de creación: ListActive debe ser estable
	// para que el fallback del resolver sea determinístico.
	seq    map[string]int64
	nextSq int64
}

func NewIndicationRepo() indications.Repository {
	return &indicationRepo{
		byID: make(map[string]indications.Indication),
		seq:  make(map[string]int64),
	}
}

func (r *indicationRepo) Create(ctx context.Context, ind indications.Indication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ind.ID == "" {
		return errors.New("indication id required")
	}
	if _, exists := r.byID[ind.ID]; exists {
		return errors.New("indication already exists")
	}

	r.nextSq++
	r.seq[ind.ID] = r.nextSq
	r.byID[ind.ID] = ind
	return nil
}

func (r *indicationRepo) Update(ctx context.Context, ind indications.Indication, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[ind.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return fmt.Errorf("%w: expected %d, got %d", indications.ErrVersionConflict, expectedVersion, cur.Version)
	}

	r.byID[ind.ID] = ind
	return nil
}

func (r *indicationRepo) GetByID(ctx context.Context, id string) (indications.Indication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ind, ok := r.byID[id]
	if !ok {
		return indications.Indication{}, ErrNotFound
	}
	return ind, nil
}

func (r *indicationRepo) ListActive(ctx context.Context, productID, speciesID, routeID string) ([]indications.Indication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]indications.Indication, 0)
	for _, ind := range r.byID {
		if ind.Status != indications.StatusActive {
			continue
		}
		if ind.ProductID != productID || ind.SpeciesID != speciesID || ind.RouteID != routeID {
			continue
		}
		out = append(out, ind)
	}

	sort.Slice(out, func(i, j int) bool {
		return r.seq[out[i].ID] < r.seq[out[j].ID]
	})

	return out, nil
}

func (r *indicationRepo) ListByProduct(ctx context.Context, productID string) ([]indications.Indication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]indications.Indication, 0)
	for _, ind := range r.byID {
		if ind.ProductID == productID {
			out = append(out, ind)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return r.seq[out[i].ID] < r.seq[out[j].ID]
	})

	return out, nil
}
