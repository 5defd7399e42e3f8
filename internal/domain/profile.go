package domain

import (
	"context"
	"time"
)

// UserProfile holds per-user tracking metadata. The start date is advisory:
// it marks when deficit tracking began and does not constrain which days may
// receive measurements.
type UserProfile struct {
	UserID    int64      `json:"userId"`
	StartDate *time.Time `json:"startDate,omitempty"` // calendar day, UTC midnight
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ProfileRepository is the port for profile persistence. Profiles are created
// lazily on first access and never deleted by normal flow.
type ProfileRepository interface {
	GetOrCreateProfile(ctx context.Context, userID int64) (*UserProfile, error)
	SetStartDate(ctx context.Context, userID int64, day time.Time) error
	StartDate(ctx context.Context, userID int64) (*time.Time, error)
}
