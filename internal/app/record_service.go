package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deficit/internal/domain"
)

// Entry is a completed data-entry dialogue ready to be committed.
type Entry struct {
	Date     time.Time // selected calendar day
	Weight   float64
	Waist    *float64
	Neck     *float64
	Calories int
}

// RecordService encapsulates measurement read/write use cases.
type RecordService struct {
	repo domain.MeasurementRepository
}

// NewRecordService creates a RecordService backed by the given repository.
func NewRecordService(repo domain.MeasurementRepository) *RecordService {
	return &RecordService{repo: repo}
}

// CommitEntry performs the terminal write of a finished dialogue. Two facts
// are committed separately: the selected day gets a measurement row carrying
// weight/waist/neck with calories absent, and the preceding day receives the
// reported calories by merge ("calories consumed yesterday, reported today").
//
// The two writes are independent commits, not one transaction; a crash in
// between leaves the measurement saved without its paired calorie row. When
// the first insert hits domain.ErrDuplicateDate the calorie write is skipped
// and the error is returned for the caller to surface as a conflict message.
func (s *RecordService) CommitEntry(ctx context.Context, userID int64, e Entry) (*domain.Measurement, error) {
	day := domain.Day(e.Date)
	m, err := s.repo.CreateMeasurement(ctx, userID, day, &e.Weight, e.Waist, e.Neck, nil)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.UpsertCalories(ctx, userID, day.AddDate(0, 0, -1), e.Calories); err != nil {
		return m, fmt.Errorf("calories for previous day: %w", err)
	}
	return m, nil
}

// ByDate returns the measurement for a day, or nil when none exists.
func (s *RecordService) ByDate(ctx context.Context, userID int64, day time.Time) (*domain.Measurement, error) {
	return s.repo.MeasurementByDate(ctx, userID, domain.Day(day))
}

// ByPeriod returns measurements from the last days days, ascending by date.
func (s *RecordService) ByPeriod(ctx context.Context, userID int64, days int) ([]domain.Measurement, error) {
	if days <= 0 {
		return nil, errors.New("days must be > 0")
	}
	return s.repo.MeasurementsByPeriod(ctx, userID, days)
}

// LastN returns up to limit measurements, most recent first.
func (s *RecordService) LastN(ctx context.Context, userID int64, limit int) ([]domain.Measurement, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be > 0")
	}
	return s.repo.LastMeasurements(ctx, userID, limit)
}

// All returns every measurement for the user, ascending by date.
func (s *RecordService) All(ctx context.Context, userID int64) ([]domain.Measurement, error) {
	return s.repo.AllMeasurements(ctx, userID)
}

// Delete removes a measurement by id, returning the removed row so the caller
// can echo its values. A missing id yields (nil, nil), not an error.
func (s *RecordService) Delete(ctx context.Context, userID int64, id int64) (*domain.Measurement, error) {
	rows, err := s.repo.LastMeasurements(ctx, userID, deleteListLimit)
	if err != nil {
		return nil, err
	}
	var target *domain.Measurement
	for i := range rows {
		if rows[i].ID == id {
			target = &rows[i]
			break
		}
	}
	if target == nil {
		// Fall back to a full scan; the id may have scrolled out of the
		// recent window between listing and picking.
		all, err := s.repo.AllMeasurements(ctx, userID)
		if err != nil {
			return nil, err
		}
		for i := range all {
			if all[i].ID == id {
				target = &all[i]
				break
			}
		}
	}
	if target == nil {
		return nil, nil
	}
	deleted, err := s.repo.DeleteMeasurement(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, nil
	}
	return target, nil
}

// Update applies a partial update to a measurement. Nil fields are left
// untouched; a missing id returns domain.ErrNotFound.
func (s *RecordService) Update(ctx context.Context, userID int64, id int64, upd domain.MeasurementUpdate) (*domain.Measurement, error) {
	return s.repo.UpdateMeasurement(ctx, userID, id, upd)
}

// deleteListLimit is how many recent records the delete flow offers.
const deleteListLimit = 5
