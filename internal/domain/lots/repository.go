package lots

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l Lot) error

	// Update aplica compare-and-swap sobre Version (ver indications).
	Update(ctx context.Context, l Lot, expectedVersion int) error

	GetByID(ctx context.Context, id string) (Lot, error)
	ListByFarm(ctx context.Context, farmID string) ([]Lot, error)

	// ListWithdrawalExpiring devuelve lotes no completados con
	// WithdrawalEndDate dentro de [from, to], orden por fecha ascendente.
	ListWithdrawalExpiring(ctx context.Context, farmID string, from, to time.Time) ([]Lot, error)
}
