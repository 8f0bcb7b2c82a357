package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"livestock-health/internal/domain/indications"
)

type IndicationsRepo struct {
	db *sql.DB
}

func NewIndicationsRepo(db *sql.DB) *IndicationsRepo {
	return &IndicationsRepo{db: db}
}

func (r *IndicationsRepo) Create(ctx context.Context, ind indications.Indication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO indications (
			id, product_id, species_id, route_id,
			country_code, age_category_id,
			dose_min, dose_max, dose_unit,
			protocol_days, withdrawal_meat_days, withdrawal_milk_days,
			status, version,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		ind.ID,
		ind.ProductID,
		ind.SpeciesID,
		ind.RouteID,
		ind.CountryCode,
		ind.AgeCategoryID,
		ind.DoseMin,
		ind.DoseMax,
		ind.DoseUnit,
		ind.ProtocolDays,
		ind.WithdrawalMeatDays,
		ind.WithdrawalMilkDays,
		string(ind.Status),
		ind.Version,
		ind.CreatedAt,
		ind.UpdatedAt,
	)
	return err
}

// Update escribe solo si la versión almacenada sigue siendo la que el
// caller leyó (CAS). Cero filas afectadas = el registro no existe o la
// versión cambió; se distingue releyendo.
func (r *IndicationsRepo) Update(ctx context.Context, ind indications.Indication, expectedVersion int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE indications
		SET
			dose_min = $2,
			dose_max = $3,
			dose_unit = $4,
			protocol_days = $5,
			withdrawal_meat_days = $6,
			withdrawal_milk_days = $7,
			status = $8,
			version = $9,
			updated_at = $10
		WHERE id = $1 AND version = $11
	`,
		ind.ID,
		ind.DoseMin,
		ind.DoseMax,
		ind.DoseUnit,
		ind.ProtocolDays,
		ind.WithdrawalMeatDays,
		ind.WithdrawalMilkDays,
		string(ind.Status),
		ind.Version,
		ind.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		cur, err := r.GetByID(ctx, ind.ID)
		if err != nil {
			return ErrNotFound
		}
		return fmt.Errorf("%w: expected %d, got %d", indications.ErrVersionConflict, expectedVersion, cur.Version)
	}
	return nil
}

func (r *IndicationsRepo) GetByID(ctx context.Context, id string) (indications.Indication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return indications.Indication{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, product_id, species_id, route_id,
			country_code, age_category_id,
			dose_min, dose_max, dose_unit,
			protocol_days, withdrawal_meat_days, withdrawal_milk_days,
			status, version,
			created_at, updated_at
		FROM indications
		WHERE id = $1
	`, id)

	var ind indications.Indication
	var status string
	if err := row.Scan(
		&ind.ID,
		&ind.ProductID,
		&ind.SpeciesID,
		&ind.RouteID,
		&ind.CountryCode,
		&ind.AgeCategoryID,
		&ind.DoseMin,
		&ind.DoseMax,
		&ind.DoseUnit,
		&ind.ProtocolDays,
		&ind.WithdrawalMeatDays,
		&ind.WithdrawalMilkDays,
		&status,
		&ind.Version,
		&ind.CreatedAt,
		&ind.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return indications.Indication{}, ErrNotFound
		}
		return indications.Indication{}, err
	}
	ind.Status = indications.Status(status)

	return ind, nil
}

// ListActive: candidatos para la cascada de especificidad. El ORDER BY
// created_at fija el orden de creación que el fallback del resolver
// necesita para ser determinístico.
func (r *IndicationsRepo) ListActive(ctx context.Context, productID, speciesID, routeID string) ([]indications.Indication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, product_id, species_id, route_id,
			country_code, age_category_id,
			dose_min, dose_max, dose_unit,
			protocol_days, withdrawal_meat_days, withdrawal_milk_days,
			status, version,
			created_at, updated_at
		FROM indications
		WHERE product_id = $1
		  AND species_id = $2
		  AND route_id = $3
		  AND status = 'active'
		ORDER BY created_at ASC, id ASC
	`, productID, speciesID, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanIndications(rows)
}

func (r *IndicationsRepo) ListByProduct(ctx context.Context, productID string) ([]indications.Indication, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, product_id, species_id, route_id,
			country_code, age_category_id,
			dose_min, dose_max, dose_unit,
			protocol_days, withdrawal_meat_days, withdrawal_milk_days,
			status, version,
			created_at, updated_at
		FROM indications
		WHERE product_id = $1
		ORDER BY created_at ASC, id ASC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanIndications(rows)
}

func scanIndications(rows *sql.Rows) ([]indications.Indication, error) {
	out := make([]indications.Indication, 0)
	for rows.Next() {
		var ind indications.Indication
		var status string
		if err := rows.Scan(
			&ind.ID,
			&ind.ProductID,
			&ind.SpeciesID,
			&ind.RouteID,
			&ind.CountryCode,
			&ind.AgeCategoryID,
			&ind.DoseMin,
			&ind.DoseMax,
			&ind.DoseUnit,
			&ind.ProtocolDays,
			&ind.WithdrawalMeatDays,
			&ind.WithdrawalMilkDays,
			&status,
			&ind.Version,
			&ind.CreatedAt,
			&ind.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ind.Status = indications.Status(status)
		out = append(out, ind)
	}

	return out, rows.Err()
}
