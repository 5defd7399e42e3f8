package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sqlite3 "modernc.org/sqlite"

	"deficit/internal/domain"
)

// SQLITE_CONSTRAINT_UNIQUE
const uniqueViolation = 2067

const measurementCols = "id, user_id, date, weight, waist, neck, calories, created_at, updated_at"

// CreateMeasurement inserts a new row, translating the uniqueness violation
// on (user_id, date) into domain.ErrDuplicateDate.
func (d *DB) CreateMeasurement(ctx context.Context, userID int64, day time.Time, weight, waist, neck *float64, calories *int) (*domain.Measurement, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	dayStr := domain.FormatDay(domain.Day(day))
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO measurements(user_id, date, weight, waist, neck, calories, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?);`,
		userID, dayStr, nullFloat(weight), nullFloat(waist), nullFloat(neck), nullInt(calories), now, now,
	)
	if err != nil {
		var se *sqlite3.Error
		if errors.As(err, &se) && se.Code() == uniqueViolation {
			return nil, domain.ErrDuplicateDate
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return d.byID(ctx, userID, id)
}

// UpsertCalories merges a calories value into the row for the day, creating
// a calories-only row when none exists. Other fields are left untouched.
func (d *DB) UpsertCalories(ctx context.Context, userID int64, day time.Time, calories int) (*domain.Measurement, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	dayStr := domain.FormatDay(domain.Day(day))
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO measurements(user_id, date, calories, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, date)
		 DO UPDATE SET calories = excluded.calories, updated_at = excluded.updated_at;`,
		userID, dayStr, calories, now, now,
	)
	if err != nil {
		return nil, err
	}
	return d.MeasurementByDate(ctx, userID, day)
}

// MeasurementByDate returns the row for the day, or nil when absent.
func (d *DB) MeasurementByDate(ctx context.Context, userID int64, day time.Time) (*domain.Measurement, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+measurementCols+" FROM measurements WHERE user_id=? AND date=?;",
		userID, domain.FormatDay(domain.Day(day)),
	)
	m, err := scanMeasurement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// MeasurementsByPeriod returns rows with date >= today-days, date ascending.
// The TEXT date column sorts and compares correctly because days are stored
// as "2006-01-02".
func (d *DB) MeasurementsByPeriod(ctx context.Context, userID int64, days int) ([]domain.Measurement, error) {
	cutoff := domain.FormatDay(domain.Day(time.Now()).AddDate(0, 0, -days))
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+measurementCols+" FROM measurements WHERE user_id=? AND date >= ? ORDER BY date ASC;",
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
		"SELECT "+measurementCols+" FROM measurements WHERE user_id=? ORDER BY date DESC LIMIT ?;",
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
		"SELECT "+measurementCols+" FROM measurements WHERE user_id=? ORDER BY date ASC;",
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
	res, err := d.sql.ExecContext(ctx, "DELETE FROM measurements WHERE id=? AND user_id=?;", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateMeasurement applies a partial update; nil fields keep their stored
// value. A missing id returns domain.ErrNotFound.
func (d *DB) UpdateMeasurement(ctx context.Context, userID int64, id int64, upd domain.MeasurementUpdate) (*domain.Measurement, error) {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE measurements SET
			weight = COALESCE(?, weight),
			waist = COALESCE(?, waist),
			neck = COALESCE(?, neck),
			calories = COALESCE(?, calories),
			updated_at = ?
		 WHERE id=? AND user_id=?;`,
		nullFloat(upd.Weight), nullFloat(upd.Waist), nullFloat(upd.Neck), nullInt(upd.Calories),
		time.Now().UTC().Format(time.RFC3339), id, userID,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	return d.byID(ctx, userID, id)
}

func (d *DB) byID(ctx context.Context, userID int64, id int64) (*domain.Measurement, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+measurementCols+" FROM measurements WHERE id=? AND user_id=?;", id, userID)
	return scanMeasurement(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(row rowScanner) (*domain.Measurement, error) {
	var (
		m          domain.Measurement
		dayStr     string
		weight     sql.NullFloat64
		waist      sql.NullFloat64
		neck       sql.NullFloat64
		calories   sql.NullInt64
		createdStr string
		updatedStr string
	)
	if err := row.Scan(&m.ID, &m.UserID, &dayStr, &weight, &waist, &neck, &calories, &createdStr, &updatedStr); err != nil {
		return nil, err
	}
	day, err := domain.ParseDay(dayStr)
	if err != nil {
		return nil, err
	}
	m.Date = day
	if m.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, err
	}
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
