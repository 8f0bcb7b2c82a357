package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"livestock-health/internal/domain/treatments"
)

type treatmentRepo struct {
	mu   sync.RWMutex
	byID map[string]treatments.Treatment
}

func NewTreatmentRepo() treatments.Repository {
	return &treatmentRepo{
		byID: make(map[string]treatments.Treatment),
	}
}

func (r *treatmentRepo) Create(ctx context.Context, t treatments.Treatment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		return errors.New("treatment id required")
	}
	if _, exists := r.byID[t.ID]; exists {
		return errors.New("treatment already exists")
	}

	r.byID[t.ID] = t
	return nil
}

func (r *treatmentRepo) Update(ctx context.Context, t treatments.Treatment, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[t.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return fmt.Errorf("%w: expected %d, got %d", treatments.ErrVersionConflict, expectedVersion, cur.Version)
	}

	r.byID[t.ID] = t
	return nil
}

func (r *treatmentRepo) GetByID(ctx context.Context, id string) (treatments.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return treatments.Treatment{}, ErrNotFound
	}
	return t, nil
}

func (r *treatmentRepo) ListByFarm(ctx context.Context, farmID string, filter treatments.ListFilter) ([]treatments.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]treatments.Treatment, 0)
	for _, t := range r.byID {
		if t.FarmID != farmID {
			continue
		}
		if filter.Kind != "" && t.Kind != filter.Kind {
			continue
		}
		if filter.From != nil && t.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.Date.After(*filter.To) {
			continue
		}
		out = append(out, t)
	}

	// Orden por fecha desc (más reciente primero)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *treatmentRepo) ListOverdue(ctx context.Context, farmID string, now time.Time) ([]treatments.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]treatments.Treatment, 0)
	for _, t := range r.byID {
		if t.FarmID != farmID || t.Status == treatments.StatusCompleted || t.NextDueDate == nil {
			continue
		}
		if t.NextDueDate.Before(now) {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].NextDueDate.Before(*out[j].NextDueDate)
	})

	return out, nil
}

func (r *treatmentRepo) ListVaccinationsDue(ctx context.Context, farmID string, from, to time.Time) ([]treatments.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]treatments.Treatment, 0)
	for _, t := range r.byID {
		if t.FarmID != farmID || t.Kind != treatments.KindVaccination {
			continue
		}
		if t.Status == treatments.StatusCompleted || t.NextDueDate == nil {
			continue
		}
		if t.NextDueDate.Before(from) || t.NextDueDate.After(to) {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].NextDueDate.Before(*out[j].NextDueDate)
	})

	return out, nil
}
