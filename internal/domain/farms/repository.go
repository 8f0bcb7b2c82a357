package farms

import "context"

type Repository interface {
	Create(ctx context.Context, f Farm) error
	GetByID(ctx context.Context, id string) (Farm, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Farm, error)
}
