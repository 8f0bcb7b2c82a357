package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"livestock-health/internal/domain/animals"
)

type animalRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal

	// weights por animal, en orden de registro.
	weights map[string][]animals.WeightRecord
}

func NewAnimalRepo() animals.Repository {
	return &animalRepo{
		byID:    make(map[string]animals.Animal),
		weights: make(map[string][]animals.WeightRecord),
	}
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("animal already exists")
	}

	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *animalRepo) ListByFarm(ctx context.Context, farmID string, filter animals.ListFilter) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.FarmID != farmID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.LotID != "" && a.LotID != filter.LotID {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *animalRepo) RecordWeight(ctx context.Context, w animals.WeightRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[w.AnimalID]; !ok {
		return ErrNotFound
	}
	r.weights[w.AnimalID] = append(r.weights[w.AnimalID], w)
	return nil
}

func (r *animalRepo) LastWeight(ctx context.Context, animalID string) (animals.WeightRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastWeightLocked(animalID)
}

func (r *animalRepo) lastWeightLocked(animalID string) (animals.WeightRecord, error) {
	ws := r.weights[animalID]
	if len(ws) == 0 {
		return animals.WeightRecord{}, ErrNotFound
	}

	last := ws[0]
	for _, w := range ws[1:] {
		if w.MeasuredAt.After(last.MeasuredAt) {
			last = w
		}
	}
	return last, nil
}

func (r *animalRepo) ListUnweighedSince(ctx context.Context, farmID string, cutoff time.Time) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.FarmID != farmID || a.Status != animals.StatusAlive {
			continue
		}
		last, err := r.lastWeightLocked(a.ID)
		// Nunca pesado o última pesada anterior al corte.
		if err != nil || last.MeasuredAt.Before(cutoff) {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *animalRepo) ListSaleReady(ctx context.Context, farmID string, minKg float64) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.FarmID != farmID || a.Status != animals.StatusAlive {
			continue
		}
		last, err := r.lastWeightLocked(a.ID)
		if err != nil || last.WeightKg < minKg {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
