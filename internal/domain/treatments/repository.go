package treatments

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t Treatment) error

	// Update aplica compare-and-swap sobre Version (ver indications).
	Update(ctx context.Context, t Treatment, expectedVersion int) error

	GetByID(ctx context.Context, id string) (Treatment, error)
	ListByFarm(ctx context.Context, farmID string, filter ListFilter) ([]Treatment, error)

	// ListOverdue devuelve tratamientos no completados con NextDueDate
	// anterior a now.
	ListOverdue(ctx context.Context, farmID string, now time.Time) ([]Treatment, error)

	// ListVaccinationsDue devuelve vacunaciones no completadas con
	// NextDueDate dentro de [from, to].
	ListVaccinationsDue(ctx context.Context, farmID string, from, to time.Time) ([]Treatment, error)
}

type ListFilter struct {
	Kind  Kind
	From  *time.Time
	To    *time.Time
	Limit int
}
