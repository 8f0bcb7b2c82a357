package postgres

import (
	"context"
	"database/sql"
	"strings"

	"livestock-health/internal/domain/catalog"
)

type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p catalog.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, name, type, active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		p.ID,
		p.Name,
		string(p.Type),
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *CatalogRepo) UpdateProduct(ctx context.Context, p catalog.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET
			name = $2,
			type = $3,
			active = $4,
			updated_at = $5
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		string(p.Type),
		p.Active,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) GetProductByID(ctx context.Context, id string) (catalog.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return catalog.Product{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, active, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id)

	var p catalog.Product
	var typ string
	if err := row.Scan(&p.ID, &p.Name, &typ, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Product{}, ErrNotFound
		}
		return catalog.Product{}, err
	}
	p.Type = catalog.ProductType(typ)

	return p, nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context, onlyActive bool) ([]catalog.Product, error) {
	q := `
		SELECT id, name, type, active, created_at, updated_at
		FROM products
	`
	if onlyActive {
		q += " WHERE active = true"
	}
	q += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.Product, 0)
	for rows.Next() {
		var p catalog.Product
		var typ string
		if err := rows.Scan(&p.ID, &p.Name, &typ, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Type = catalog.ProductType(typ)
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *CatalogRepo) GetSpeciesByID(ctx context.Context, id string) (catalog.Species, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name FROM species WHERE id = $1
	`, strings.TrimSpace(id))

	var s catalog.Species
	if err := row.Scan(&s.ID, &s.Name); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Species{}, ErrNotFound
		}
		return catalog.Species{}, err
	}
	return s, nil
}

func (r *CatalogRepo) ListSpecies(ctx context.Context) ([]catalog.Species, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM species ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.Species, 0)
	for rows.Next() {
		var s catalog.Species
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) GetRouteByID(ctx context.Context, id string) (catalog.Route, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, name FROM routes WHERE id = $1
	`, strings.TrimSpace(id))

	var rt catalog.Route
	if err := row.Scan(&rt.ID, &rt.Code, &rt.Name); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Route{}, ErrNotFound
		}
		return catalog.Route{}, err
	}
	return rt, nil
}

func (r *CatalogRepo) ListRoutes(ctx context.Context) ([]catalog.Route, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name FROM routes ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.Route, 0)
	for rows.Next() {
		var rt catalog.Route
		if err := rows.Scan(&rt.ID, &rt.Code, &rt.Name); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) GetAgeCategoryByID(ctx context.Context, id string) (catalog.AgeCategory, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, species_id, name, min_months, max_months
		FROM age_categories
		WHERE id = $1
	`, strings.TrimSpace(id))

	var ac catalog.AgeCategory
	if err := row.Scan(&ac.ID, &ac.SpeciesID, &ac.Name, &ac.MinMonths, &ac.MaxMonths); err != nil {
		if err == sql.ErrNoRows {
			return catalog.AgeCategory{}, ErrNotFound
		}
		return catalog.AgeCategory{}, err
	}
	return ac, nil
}

func (r *CatalogRepo) ListAgeCategories(ctx context.Context, speciesID string) ([]catalog.AgeCategory, error) {
	q := `
		SELECT id, species_id, name, min_months, max_months
		FROM age_categories
	`
	args := []any{}
	if speciesID = strings.TrimSpace(speciesID); speciesID != "" {
		q += " WHERE species_id = $1"
		args = append(args, speciesID)
	}
	q += " ORDER BY min_months ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.AgeCategory, 0)
	for rows.Next() {
		var ac catalog.AgeCategory
		if err := rows.Scan(&ac.ID, &ac.SpeciesID, &ac.Name, &ac.MinMonths, &ac.MaxMonths); err != nil {
			return nil, err
		}
		out = append(out, ac)
	}
	return out, rows.Err()
}
