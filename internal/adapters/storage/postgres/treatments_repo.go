package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"livestock-health/internal/domain/treatments"
)

type TreatmentsRepo struct {
	db *sql.DB
}

func NewTreatmentsRepo(db *sql.DB) *TreatmentsRepo {
	return &TreatmentsRepo{db: db}
}

func (r *TreatmentsRepo) Create(ctx context.Context, t treatments.Treatment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO treatments (
			id, farm_id, animal_id, lot_id,
			product_id, indication_id,
			kind, date,
			dose, dose_unit,
			withdrawal_end_date, withdrawal_source,
			next_due_date,
			status, notes, version,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		t.ID,
		t.FarmID,
		t.AnimalID,
		t.LotID,
		t.ProductID,
		t.IndicationID,
		string(t.Kind),
		t.Date,
		t.Dose,
		t.DoseUnit,
		toNullTime(t.WithdrawalEndDate),
		string(t.WithdrawalSource),
		toNullTime(t.NextDueDate),
		string(t.Status),
		t.Notes,
		t.Version,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

func (r *TreatmentsRepo) Update(ctx context.Context, t treatments.Treatment, expectedVersion int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE treatments
		SET
			withdrawal_end_date = $2,
			withdrawal_source = $3,
			next_due_date = $4,
			status = $5,
			notes = $6,
			version = $7,
			updated_at = $8
		WHERE id = $1 AND version = $9
	`,
		t.ID,
		toNullTime(t.WithdrawalEndDate),
		string(t.WithdrawalSource),
		toNullTime(t.NextDueDate),
		string(t.Status),
		t.Notes,
		t.Version,
		t.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		cur, err := r.GetByID(ctx, t.ID)
		if err != nil {
			return ErrNotFound
		}
		return fmt.Errorf("%w: expected %d, got %d", treatments.ErrVersionConflict, expectedVersion, cur.Version)
	}
	return nil
}

func (r *TreatmentsRepo) GetByID(ctx context.Context, id string) (treatments.Treatment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return treatments.Treatment{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, farm_id, animal_id, lot_id,
			product_id, indication_id,
			kind, date,
			dose, dose_unit,
			withdrawal_end_date, withdrawal_source,
			next_due_date,
			status, notes, version,
			created_at, updated_at
		FROM treatments
		WHERE id = $1
	`, id)

	var t treatments.Treatment
	var kind, source, status string
	var withdrawalEnd, nextDue sql.NullTime

	if err := row.Scan(
		&t.ID,
		&t.FarmID,
		&t.AnimalID,
		&t.LotID,
		&t.ProductID,
		&t.IndicationID,
		&kind,
		&t.Date,
		&t.Dose,
		&t.DoseUnit,
		&withdrawalEnd,
		&source,
		&nextDue,
		&status,
		&t.Notes,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return treatments.Treatment{}, ErrNotFound
		}
		return treatments.Treatment{}, err
	}

	t.Kind = treatments.Kind(kind)
	t.WithdrawalSource = treatments.WithdrawalSource(source)
	t.Status = treatments.Status(status)
	t.WithdrawalEndDate = fromNullTime(withdrawalEnd)
	t.NextDueDate = fromNullTime(nextDue)

	return t, nil
}

func (r *TreatmentsRepo) ListByFarm(ctx context.Context, farmID string, filter treatments.ListFilter) ([]treatments.Treatment, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, farm_id, animal_id, lot_id,
			product_id, indication_id,
			kind, date,
			dose, dose_unit,
			withdrawal_end_date, withdrawal_source,
			next_due_date,
			status, notes, version,
			created_at, updated_at
		FROM treatments
		WHERE farm_id = $1
	`)

	args := []any{farmID}
	argN := 2

	if filter.Kind != "" {
		sb.WriteString(fmt.Sprintf(" AND kind = $%d", argN))
		args = append(args, string(filter.Kind))
		argN++
	}
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND date >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND date <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY date DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTreatments(rows)
}

func (r *TreatmentsRepo) ListOverdue(ctx context.Context, farmID string, now time.Time) ([]treatments.Treatment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, farm_id, animal_id, lot_id,
			product_id, indication_id,
			kind, date,
			dose, dose_unit,
			withdrawal_end_date, withdrawal_source,
			next_due_date,
			status, notes, version,
			created_at, updated_at
		FROM treatments
		WHERE farm_id = $1
		  AND status <> 'completed'
		  AND next_due_date IS NOT NULL
		  AND next_due_date < $2
		ORDER BY next_due_date ASC
	`, farmID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTreatments(rows)
}

func (r *TreatmentsRepo) ListVaccinationsDue(ctx context.Context, farmID string, from, to time.Time) ([]treatments.Treatment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, farm_id, animal_id, lot_id,
			product_id, indication_id,
			kind, date,
			dose, dose_unit,
			withdrawal_end_date, withdrawal_source,
			next_due_date,
			status, notes, version,
			created_at, updated_at
		FROM treatments
		WHERE farm_id = $1
		  AND kind = 'vaccination'
		  AND status <> 'completed'
		  AND next_due_date BETWEEN $2 AND $3
		ORDER BY next_due_date ASC
	`, farmID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTreatments(rows)
}

func scanTreatments(rows *sql.Rows) ([]treatments.Treatment, error) {
	out := make([]treatments.Treatment, 0)
	for rows.Next() {
		var t treatments.Treatment
		var kind, source, status string
		var withdrawalEnd, nextDue sql.NullTime

		if err := rows.Scan(
			&t.ID,
			&t.FarmID,
			&t.AnimalID,
			&t.LotID,
			&t.ProductID,
			&t.IndicationID,
			&kind,
			&t.Date,
			&t.Dose,
			&t.DoseUnit,
			&withdrawalEnd,
			&source,
			&nextDue,
			&status,
			&t.Notes,
			&t.Version,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}

		t.Kind = treatments.Kind(kind)
		t.WithdrawalSource = treatments.WithdrawalSource(source)
		t.Status = treatments.Status(status)
		t.WithdrawalEndDate = fromNullTime(withdrawalEnd)
		t.NextDueDate = fromNullTime(nextDue)

		out = append(out, t)
	}

	return out, rows.Err()
}
