package sqlite

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
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := d.sql.ExecContext(ctx,
		"INSERT OR IGNORE INTO user_profiles(user_id, created_at, updated_at) VALUES(?, ?, ?);",
		userID, now, now,
	)
	if err != nil {
		return nil, err
	}
	row := d.sql.QueryRowContext(ctx,
		"SELECT user_id, start_date, created_at, updated_at FROM user_profiles WHERE user_id=?;", userID)
	return scanProfile(row)
}

// SetStartDate upserts the tracking start date.
func (d *DB) SetStartDate(ctx context.Context, userID int64, day time.Time) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO user_profiles(user_id, start_date, created_at, updated_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT(user_id)
		 DO UPDATE SET start_date = excluded.start_date, updated_at = excluded.updated_at;`,
		userID, domain.FormatDay(domain.Day(day)), now, now,
	)
	return err
}

// StartDate returns the tracking start date, or nil when unset or when no
// profile exists yet.
func (d *DB) StartDate(ctx context.Context, userID int64) (*time.Time, error) {
	var sd sql.NullString
	err := d.sql.QueryRowContext(ctx,
		"SELECT start_date FROM user_profiles WHERE user_id=?;", userID,
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
	day, err := domain.ParseDay(sd.String)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func scanProfile(row rowScanner) (*domain.UserProfile, error) {
	var (
		p          domain.UserProfile
		sd         sql.NullString
		createdStr string
		updatedStr string
	)
	if err := row.Scan(&p.UserID, &sd, &createdStr, &updatedStr); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, err
	}
	if sd.Valid {
		day, err := domain.ParseDay(sd.String)
		if err != nil {
			return nil, err
		}
		p.StartDate = &day
	}
	return &p, nil
}
