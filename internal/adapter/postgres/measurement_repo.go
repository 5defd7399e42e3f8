package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"deficit/internal/domain"
)

const measurementCols = "id, user_id, date, weight, waist, neck, calories, created_at, updated_at"

// CreateMeasurement inserts a new row, translating the uniqueness violation
// on (user_id, date) into domain.ErrDuplicateDate.
func (d *DB) CreateMeasurement(ctx context.Context, userID int64, day time.Time, weight, waist, neck *float64, calories *int) (*domain.Measurement, error) {
	now := time.Now().UTC()
	row := d.sql.QueryRowContext(ctx,
		`INSERT INTO measurements(user_id, date, weight, waist, neck, calories, created_at, updated_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $7) RETURNING `+measurementCols+";",
		userID, domain.Day(day), nullFloat(weight), nullFloat(waist), nullFloat(neck), nullInt(calories), now,
	)
	m, err := scanMeasurement(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, domain.ErrDuplicateDate
		}
		return nil, err
	}
	return m, nil
}

// UpsertCalories merges a calories value into the row for the day, creating
// a calories-only row when none exists. Other fields are left untouched.
func (d *DB) UpsertCalories(ctx context.Context, userID int64, day time.Time, calories int) (*domain.Measurement, error) {
	now := time.Now().UTC()
	row := d.sql.QueryRowContext(ctx,
		`INSERT INTO measurements(user_id, date, calories, created_at, updated_at)
		 VALUES($1, $2, $3, $4, $4)
		 ON CONFLICT ON CONSTRAINT uix_user_date
		 DO UPDATE SET calories = EXCLUDED.calories, updated_at = EXCLUDED.updated_at
		 RETURNING `+measurementCols+";",
		userID, domain.Day(day), calories, now,
	)
	return scanMeasurement(row)
}

// MeasurementByDate returns the row for the day, or nil when absent.
func (d *DB) MeasurementByDate(ctx context.Context, userID int64, day time.Time) (*domain.Measurement, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+measurementCols+" FROM measurements WHERE user_id=$1 AND date=$2;",
		userID, domain.Day(day),
	)
	m, err := scanMeasurement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// MeasurementsByPeriod returns rows with date >= today-days, date ascending.
func (d *DB) MeasurementsByPeriod(ctx context.Context, userID int64, days int) ([]domain.Measurement, error) {
	cutoff := domain.Day(time.Now()).AddDate(0, 0, -days)
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+measurementCols+" FROM measurements WHERE user_id=$1 AND date >= $2 ORDER BY date ASC;",
		userID, cutoff,
	)
	if err != nil {
		return nil, err
	}
	return collectMeasurements(rows)
}

// LastMeasurements returns up to limit rows, date descending.
func (d *DB) LastMeasurements(ctx context.Context, userID int64, limit int) ([]domain.Measurement, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+measurementCols+" FROM measurements WHERE user_id=$1 ORDER BY date DESC LIMIT $2;",
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	return collectMeasurements(rows)
}

// AllMeasurements returns every row for the user, date ascending.
func (d *DB) AllMeasurements(ctx context.Context, userID int64) ([]domain.Measurement, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+measurementCols+" FROM measurements WHERE user_id=$1 ORDER BY date ASC;",
		userID,
	)
	if err != nil {
		return nil, err
	}
	return collectMeasurements(rows)
}

// DeleteMeasurement removes the row if present and reports whether anything
// was removed.
func (d *DB) DeleteMeasurement(ctx context.Context, userID int64, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM measurements WHERE id=$1 AND user_id=$2;", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateMeasurement applies a partial update; nil fields keep their stored
// value. A missing id returns domain.ErrNotFound.
func (d *DB) UpdateMeasurement(ctx context.Context, userID int64, id int64, upd domain.MeasurementUpdate) (*domain.Measurement, error) {
	row := d.sql.QueryRowContext(ctx,
		`UPDATE measurements SET
			weight = COALESCE($1, weight),
			waist = COALESCE($2, waist),
			neck = COALESCE($3, neck),
			calories = COALESCE($4, calories),
			updated_at = $5
		 WHERE id=$6 AND user_id=$7 RETURNING `+measurementCols+";",
		nullFloat(upd.Weight), nullFloat(upd.Waist), nullFloat(upd.Neck), nullInt(upd.Calories),
		time.Now().UTC(), id, userID,
	)
	m, err := scanMeasurement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return m, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(row rowScanner) (*domain.Measurement, error) {
	var (
		m        domain.Measurement
		weight   sql.NullFloat64
		waist    sql.NullFloat64
		neck     sql.NullFloat64
		calories sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Date, &weight, &waist, &neck, &calories, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Date = domain.Day(m.Date)
	if weight.Valid {
		m.Weight = &weight.Float64
	}
	if waist.Valid {
		m.Waist = &waist.Float64
	}
	if neck.Valid {
		m.Neck = &neck.Float64
	}
	if calories.Valid {
		c := int(calories.Int64)
		m.Calories = &c
	}
	return &m, nil
}

func collectMeasurements(rows *sql.Rows) ([]domain.Measurement, error) {
	defer rows.Close()
	out := make([]domain.Measurement, 0)
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
