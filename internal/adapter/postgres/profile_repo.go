package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"deficit/internal/domain"
)

// GetOrCreateProfile returns the user's profile, creating an empty one on
// first access.
func (d *DB) GetOrCreateProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	now := time.Now().UTC()
	row := d.sql.QueryRowContext(ctx,
		`INSERT INTO user_profiles(user_id, created_at, updated_at) VALUES($1, $2, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING user_id, start_date, created_at, updated_at;`,
		userID, now,
	)
	return scanProfile(row)
}

// SetStartDate upserts the tracking start date.
func (d *DB) SetStartDate(ctx context.Context, userID int64, day time.Time) error {
	now := time.Now().UTC()
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO user_profiles(user_id, start_date, created_at, updated_at) VALUES($1, $2, $3, $3)
		 ON CONFLICT (user_id) DO UPDATE SET start_date = EXCLUDED.start_date, updated_at = EXCLUDED.updated_at;`,
		userID, domain.Day(day), now,
	)
	return err
}

// StartDate returns the tracking start date, or nil when unset or when no
// profile exists yet.
func (d *DB) StartDate(ctx context.Context, userID int64) (*time.Time, error) {
	var sd sql.NullTime
	err := d.sql.QueryRowContext(ctx,
		"SELECT start_date FROM user_profiles WHERE user_id=$1;", userID,
	).Scan(&sd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !sd.Valid {
		return nil, nil
	}
	day := domain.Day(sd.Time)
	return &day, nil
}

func scanProfile(row rowScanner) (*domain.UserProfile, error) {
	var (
		p  domain.UserProfile
		sd sql.NullTime
	)
	if err := row.Scan(&p.UserID, &sd, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if sd.Valid {
		day := domain.Day(sd.Time)
		p.StartDate = &day
	}
	return &p, nil
}
