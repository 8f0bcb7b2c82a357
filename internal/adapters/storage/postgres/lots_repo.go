package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"livestock-health/internal/domain/lots"
)

type LotsRepo struct {
	db *sql.DB
}

func NewLotsRepo(db *sql.DB) *LotsRepo {
	return &LotsRepo{db: db}
}

func (r *LotsRepo) Create(ctx context.Context, l lots.Lot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lots (
			id, farm_id, name,
			start_date, end_date,
			withdrawal_end_date, completed, version,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		l.ID,
		l.FarmID,
		l.Name,
		l.StartDate,
		toNullTime(l.EndDate),
		toNullTime(l.WithdrawalEndDate),
		l.Completed,
		l.Version,
		l.CreatedAt,
		l.UpdatedAt,
	)
	return err
}

func (r *LotsRepo) Update(ctx context.Context, l lots.Lot, expectedVersion int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE lots
		SET
			name = $2,
			end_date = $3,
			withdrawal_end_date = $4,
			completed = $5,
			version = $6,
			updated_at = $7
		WHERE id = $1 AND version = $8
	`,
		l.ID,
		l.Name,
		toNullTime(l.EndDate),
		toNullTime(l.WithdrawalEndDate),
		l.Completed,
		l.Version,
		l.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		cur, err := r.GetByID(ctx, l.ID)
		if err != nil {
			return ErrNotFound
		}
		return fmt.Errorf("%w: expected %d, got %d", lots.ErrVersionConflict, expectedVersion, cur.Version)
	}
	return nil
}

func (r *LotsRepo) GetByID(ctx context.Context, id string) (lots.Lot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return lots.Lot{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, farm_id, name,
			start_date, end_date,
			withdrawal_end_date, completed, version,
			created_at, updated_at
		FROM lots
		WHERE id = $1
	`, id)

	var l lots.Lot
	var endDate, withdrawalEnd sql.NullTime
	if err := row.Scan(
		&l.ID,
		&l.FarmID,
		&l.Name,
		&l.StartDate,
		&endDate,
		&withdrawalEnd,
		&l.Completed,
		&l.Version,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return lots.Lot{}, ErrNotFound
		}
		return lots.Lot{}, err
	}

	l.EndDate = fromNullTime(endDate)
	l.WithdrawalEndDate = fromNullTime(withdrawalEnd)

	return l, nil
}

func (r *LotsRepo) ListByFarm(ctx context.Context, farmID string) ([]lots.Lot, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, farm_id, name,
			start_date, end_date,
			withdrawal_end_date, completed, version,
			created_at, updated_at
		FROM lots
		WHERE farm_id = $1
		ORDER BY created_at ASC
	`, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLots(rows)
}

func (r *LotsRepo) ListWithdrawalExpiring(ctx context.Context, farmID string, from, to time.Time) ([]lots.Lot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, farm_id, name,
			start_date, end_date,
			withdrawal_end_date, completed, version,
			created_at, updated_at
		FROM lots
		WHERE farm_id = $1
		  AND completed = false
		  AND withdrawal_end_date BETWEEN $2 AND $3
		ORDER BY withdrawal_end_date ASC
	`, farmID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLots(rows)
}

func scanLots(rows *sql.Rows) ([]lots.Lot, error) {
	out := make([]lots.Lot, 0)
	for rows.Next() {
		var l lots.Lot
		var endDate, withdrawalEnd sql.NullTime

		if err := rows.Scan(
			&l.ID,
			&l.FarmID,
			&l.Name,
			&l.StartDate,
			&endDate,
			&withdrawalEnd,
			&l.Completed,
			&l.Version,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, err
		}

		l.EndDate = fromNullTime(endDate)
		l.WithdrawalEndDate = fromNullTime(withdrawalEnd)

		out = append(out, l)
	}

	return out, rows.Err()
}
