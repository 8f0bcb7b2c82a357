package postgres

import (
	"context"
	"database/sql"
	"strings"

	"livestock-health/internal/domain/farms"
)

type FarmsRepo struct {
	db *sql.DB
}

func NewFarmsRepo(db *sql.DB) *FarmsRepo {
	return &FarmsRepo{db: db}
}

func (r *FarmsRepo) Create(ctx context.Context, f farms.Farm) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO farms (
			id, owner_user_id,
			name, country_code, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		f.ID,
		f.OwnerUserID,
		f.Name,
		f.CountryCode,
		f.Notes,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return err
}

func (r *FarmsRepo) GetByID(ctx context.Context, id string) (farms.Farm, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return farms.Farm{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, owner_user_id,
			name, country_code, notes,
			created_at, updated_at
		FROM farms
		WHERE id = $1
	`, id)

	var f farms.Farm
	if err := row.Scan(
		&f.ID,
		&f.OwnerUserID,
		&f.Name,
		&f.CountryCode,
		&f.Notes,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return farms.Farm{}, ErrNotFound
		}
		return farms.Farm{}, err
	}

	return f, nil
}

func (r *FarmsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]farms.Farm, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, owner_user_id,
			name, country_code, notes,
			created_at, updated_at
		FROM farms
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]farms.Farm, 0)
	for rows.Next() {
		var f farms.Farm
		if err := rows.Scan(
			&f.ID,
			&f.OwnerUserID,
			&f.Name,
			&f.CountryCode,
			&f.Notes,
			&f.CreatedAt,
			&f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	return out, rows.Err()
}
