package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"livestock-health/internal/domain/lots"
)

type lotRepo struct {
	mu   sync.RWMutex
	byID map[string]lots.Lot
}

func NewLotRepo() lots.Repository {
	return &lotRepo{
		byID: make(map[string]lots.Lot),
	}
}

func (r *lotRepo) Create(ctx context.Context, l lots.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.ID == "" {
		return errors.New("lot id required")
	}
	if _, exists := r.byID[l.ID]; exists {
		return errors.New("lot already exists")
	}

	r.byID[l.ID] = l
	return nil
}

func (r *lotRepo) Update(ctx context.Context, l lots.Lot, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[l.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return fmt.Errorf("%w: expected %d, got %d", lots.ErrVersionConflict, expectedVersion, cur.Version)
	}

	r.byID[l.ID] = l
	return nil
}

func (r *lotRepo) GetByID(ctx context.Context, id string) (lots.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return lots.Lot{}, ErrNotFound
	}
	return l, nil
}

func (r *lotRepo) ListByFarm(ctx context.Context, farmID string) ([]lots.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lots.Lot, 0)
	for _, l := range r.byID {
		if l.FarmID == farmID {
			out = append(out, l)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *lotRepo) ListWithdrawalExpiring(ctx context.Context, farmID string, from, to time.Time) ([]lots.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lots.Lot, 0)
	for _, l := range r.byID {
		if l.FarmID != farmID || l.Completed || l.WithdrawalEndDate == nil {
			continue
		}
		if l.WithdrawalEndDate.Before(from) || l.WithdrawalEndDate.After(to) {
			continue
		}
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].WithdrawalEndDate.Before(*out[j].WithdrawalEndDate)
	})

	return out, nil
}
