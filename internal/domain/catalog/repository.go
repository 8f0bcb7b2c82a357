package catalog

import "context"

type Repository interface {
	CreateProduct(ctx context.Context, p Product) error
	UpdateProduct(ctx context.Context, p Product) error
	GetProductByID(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context, onlyActive bool) ([]Product, error)

	// Datos de referencia (seed, solo lectura).
	GetSpeciesByID(ctx context.Context, id string) (Species, error)
	ListSpecies(ctx context.Context) ([]Species, error)
	GetRouteByID(ctx context.Context, id string) (Route, error)
	ListRoutes(ctx context.Context) ([]Route, error)
	GetAgeCategoryByID(ctx context.Context, id string) (AgeCategory, error)
	ListAgeCategories(ctx context.Context, speciesID string) ([]AgeCategory, error)
}
