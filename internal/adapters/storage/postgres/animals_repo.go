package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"livestock-health/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animals (
			id, farm_id, lot_id,
			tag, species_id, breed, sex,
			birth_date, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		a.ID,
		a.FarmID,
		a.LotID,
		a.Tag,
		a.SpeciesID,
		a.Breed,
		string(a.Sex),
		toNullTime(a.BirthDate),
		string(a.Status),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			lot_id = $2,
			tag = $3,
			breed = $4,
			sex = $5,
			birth_date = $6,
			status = $7,
			updated_at = $8
		WHERE id = $1
	`,
		a.ID,
		a.LotID,
		a.Tag,
		a.Breed,
		string(a.Sex),
		toNullTime(a.BirthDate),
		string(a.Status),
		a.UpdatedAt,
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

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, farm_id, lot_id,
			tag, species_id, breed, sex,
			birth_date, status,
			created_at, updated_at
		FROM animals
		WHERE id = $1
	`, id)

	var a animals.Animal
	var sex, status string
	var birthDate sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.FarmID,
		&a.LotID,
		&a.Tag,
		&a.SpeciesID,
		&a.Breed,
		&sex,
		&birthDate,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, ErrNotFound
		}
		return animals.Animal{}, err
	}

	a.Sex = animals.Sex(sex)
	a.Status = animals.AnimalStatus(status)
	a.BirthDate = fromNullTime(birthDate)

	return a, nil
}

func (r *AnimalsRepo) ListByFarm(ctx context.Context, farmID string, filter animals.ListFilter) ([]animals.Animal, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, farm_id, lot_id,
			tag, species_id, breed, sex,
			birth_date, status,
			created_at, updated_at
		FROM animals
		WHERE farm_id = $1
	`)

	args := []any{farmID}
	argN := 2

	if filter.Status != "" {
		sb.WriteString(fmt.Sprintf(" AND status = $%d", argN))
		args = append(args, string(filter.Status))
		argN++
	}
	if filter.LotID != "" {
		sb.WriteString(fmt.Sprintf(" AND lot_id = $%d", argN))
		args = append(args, filter.LotID)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	sb.WriteString(" ORDER BY created_at ASC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAnimals(rows)
}

func (r *AnimalsRepo) RecordWeight(ctx context.Context, w animals.WeightRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO weight_records (
			id, farm_id, animal_id,
			weight_kg, measured_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		w.ID,
		w.FarmID,
		w.AnimalID,
		w.WeightKg,
		w.MeasuredAt,
	)
	return err
}

func (r *AnimalsRepo) LastWeight(ctx context.Context, animalID string) (animals.WeightRecord, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return animals.WeightRecord{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, farm_id, animal_id, weight_kg, measured_at
		FROM weight_records
		WHERE animal_id = $1
		ORDER BY measured_at DESC
		LIMIT 1
	`, animalID)

	var w animals.WeightRecord
	if err := row.Scan(&w.ID, &w.FarmID, &w.AnimalID, &w.WeightKg, &w.MeasuredAt); err != nil {
		if err == sql.ErrNoRows {
			return animals.WeightRecord{}, ErrNotFound
		}
		return animals.WeightRecord{}, err
	}
	return w, nil
}

// ListUnweighedSince: animales vivos sin ninguna pesada posterior al
// corte (incluye los nunca pesados).
func (r *AnimalsRepo) ListUnweighedSince(ctx context.Context, farmID string, cutoff time.Time) ([]animals.Animal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			a.id, a.farm_id, a.lot_id,
			a.tag, a.species_id, a.breed, a.sex,
			a.birth_date, a.status,
			a.created_at, a.updated_at
		FROM animals a
		WHERE a.farm_id = $1
		  AND a.status = 'alive'
		  AND NOT EXISTS (
			SELECT 1 FROM weight_records w
			WHERE w.animal_id = a.id AND w.measured_at >= $2
		  )
		ORDER BY a.created_at ASC
	`, farmID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAnimals(rows)
}

// ListSaleReady: animales vivos cuya última pesada alcanza el umbral.
func (r *AnimalsRepo) ListSaleReady(ctx context.Context, farmID string, minKg float64) ([]animals.Animal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			a.id, a.farm_id, a.lot_id,
			a.tag, a.species_id, a.breed, a.sex,
			a.birth_date, a.status,
			a.created_at, a.updated_at
		FROM animals a
		JOIN LATERAL (
			SELECT weight_kg
			FROM weight_records w
			WHERE w.animal_id = a.id
			ORDER BY w.measured_at DESC
			LIMIT 1
		) lw ON true
		WHERE a.farm_id = $1
		  AND a.status = 'alive'
		  AND lw.weight_kg >= $2
		ORDER BY a.created_at ASC
	`, farmID, minKg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAnimals(rows)
}

func scanAnimals(rows *sql.Rows) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0)
	for rows.Next() {
		var a animals.Animal
		var sex, status string
		var birthDate sql.NullTime

		if err := rows.Scan(
			&a.ID,
			&a.FarmID,
			&a.LotID,
			&a.Tag,
			&a.SpeciesID,
			&a.Breed,
			&sex,
			&birthDate,
			&status,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}

		a.Sex = animals.Sex(sex)
		a.Status = animals.AnimalStatus(status)
		a.BirthDate = fromNullTime(birthDate)

		out = append(out, a)
	}

	return out, rows.Err()
}
