package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"livestock-health/internal/domain/catalog"
)

type catalogRepo struct {
	mu       sync.RWMutex
	products map[string]catalog.Product

	species map[string]catalog.Species
	routes  map[string]catalog.Route
	ageCats map[string]catalog.AgeCategory
}

// NewCatalogRepo arranca con los datos de referencia ya sembrados:
// especies, vías y categorías de edad son solo lectura.
func NewCatalogRepo() catalog.Repository {
	r := &catalogRepo{
		products: make(map[string]catalog.Product),
		species:  make(map[string]catalog.Species),
		routes:   make(map[string]catalog.Route),
		ageCats:  make(map[string]catalog.AgeCategory),
	}
	for _, s := range catalog.SeedSpecies() {
		r.species[s.ID] = s
	}
	for _, rt := range catalog.SeedRoutes() {
		r.routes[rt.ID] = rt
	}
	for _, ac := range catalog.SeedAgeCategories() {
		r.ageCats[ac.ID] = ac
	}
	return r
}

func (r *catalogRepo) CreateProduct(ctx context.Context, p catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		return errors.New("product id required")
	}
	if _, exists := r.products[p.ID]; exists {
		return errors.New("product already exists")
	}

	r.products[p.ID] = p
	return nil
}

func (r *catalogRepo) UpdateProduct(ctx context.Context, p catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return ErrNotFound
	}
	r.products[p.ID] = p
	return nil
}

func (r *catalogRepo) GetProductByID(ctx context.Context, id string) (catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return catalog.Product{}, ErrNotFound
	}
	return p, nil
}

func (r *catalogRepo) ListProducts(ctx context.Context, onlyActive bool) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Product, 0)
	for _, p := range r.products {
		if onlyActive && !p.Active {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}

func (r *catalogRepo) GetSpeciesByID(ctx context.Context, id string) (catalog.Species, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.species[id]
	if !ok {
		return catalog.Species{}, ErrNotFound
	}
	return s, nil
}

func (r *catalogRepo) ListSpecies(ctx context.Context) ([]catalog.Species, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Species, 0, len(r.species))
	for _, s := range r.species {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *catalogRepo) GetRouteByID(ctx context.Context, id string) (catalog.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[id]
	if !ok {
		return catalog.Route{}, ErrNotFound
	}
	return rt, nil
}

func (r *catalogRepo) ListRoutes(ctx context.Context) ([]catalog.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Route, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *catalogRepo) GetAgeCategoryByID(ctx context.Context, id string) (catalog.AgeCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ac, ok := r.ageCats[id]
	if !ok {
		return catalog.AgeCategory{}, ErrNotFound
	}
	return ac, nil
}

func (r *catalogRepo) ListAgeCategories(ctx context.Context, speciesID string) ([]catalog.AgeCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.AgeCategory, 0)
	for _, ac := range r.ageCats {
		if speciesID != "" && ac.SpeciesID != speciesID {
			continue
		}
		out = append(out, ac)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinMonths < out[j].MinMonths })
	return out, nil
}
