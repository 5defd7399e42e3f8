package app

import (
	"context"
	"errors"
	"time"

	"deficit/internal/domain"
)

// ErrStartDateInFuture rejects a tracking start date after today.
var ErrStartDateInFuture = errors.New("start date cannot be in the future")

// ProfileService encapsulates user-profile use cases.
type ProfileService struct {
	repo domain.ProfileRepository
	now  func() time.Time
}

// NewProfileService creates a ProfileService backed by the given repository.
func NewProfileService(repo domain.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo, now: time.Now}
}

// GetOrCreate returns the user's profile, creating an empty one on first
// access.
func (s *ProfileService) GetOrCreate(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	return s.repo.GetOrCreateProfile(ctx, userID)
}

// SetStartDate records when deficit tracking began. Future dates are
// rejected.
func (s *ProfileService) SetStartDate(ctx context.Context, userID int64, day time.Time) error {
	day = domain.Day(day)
	if day.After(domain.Day(s.now())) {
		return ErrStartDateInFuture
	}
	return s.repo.SetStartDate(ctx, userID, day)
}

// StartDate returns the tracking start date, or nil when unset.
func (s *ProfileService) StartDate(ctx context.Context, userID int64) (*time.Time, error) {
	return s.repo.StartDate(ctx, userID)
}

// DaysSince reports whole days elapsed from day to today.
func (s *ProfileService) DaysSince(day time.Time) int {
	return int(domain.Day(s.now()).Sub(domain.Day(day)).Hours() / 24)
}
