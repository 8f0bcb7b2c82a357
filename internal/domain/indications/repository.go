package indications

import "context"

type Repository interface {
	Create(ctx context.Context, ind Indication) error

	// Update aplica compare-and-swap sobre Version: escribe solo si la
	// versión almacenada coincide con expectedVersion; si no, devuelve
	// ErrVersionConflict (envuelto con expected/actual).
	Update(ctx context.Context, ind Indication, expectedVersion int) error

	GetByID(ctx context.Context, id string) (Indication, error)

	// ListActive devuelve las indicaciones activas para la tupla
	// (productID, speciesID, routeID) en orden de creación estable.
	// No filtra por país/edad: eso lo hace la cascada de especificidad.
	ListActive(ctx context.Context, productID, speciesID, routeID string) ([]Indication, error)

	ListByProduct(ctx context.Context, productID string) ([]Indication, error)
}
