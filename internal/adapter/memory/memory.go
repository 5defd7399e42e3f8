// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"deficit/internal/domain"
)

// DB implements the repository ports over in-process slices and maps.
type DB struct {
	mu           sync.Mutex
	measurements []domain.Measurement
	profiles     map[int64]*domain.UserProfile

	idCounter int64
	now       func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		profiles: make(map[int64]*domain.UserProfile),
		now:      time.Now,
	}
}

// Ensure interfaces are met.
var _ domain.MeasurementRepository = (*DB)(nil)
var _ domain.ProfileRepository = (*DB)(nil)

// SetClock overrides the wall clock, for tests that pin "today".
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// --- MeasurementRepository ---

// CreateMeasurement inserts a new row, enforcing one row per (user, date).
func (db *DB) CreateMeasurement(ctx context.Context, userID int64, day time.Time, weight, waist, neck *float64, calories *int) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	day = domain.Day(day)
	if db.findByDate(userID, day) != nil {
		return nil, domain.ErrDuplicateDate
	}

	db.idCounter++
	ts := db.now().UTC()
	m := domain.Measurement{
		ID:        db.idCounter,
		UserID:    userID,
		Date:      day,
		Weight:    copyFloat(weight),
		Waist:     copyFloat(waist),
		Neck:      copyFloat(neck),
		Calories:  copyInt(calories),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	db.measurements = append(db.measurements, m)
	out := m
	return &out, nil
}

// UpsertCalories overwrites only the calories field of the row for the day,
// creating a calories-only row when none exists.
func (db *DB) UpsertCalories(ctx context.Context, userID int64, day time.Time, calories int) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	day = domain.Day(day)
	if m := db.findByDate(userID, day); m != nil {
		m.Calories = &calories
		m.UpdatedAt = db.now().UTC()
		out := *m
		return &out, nil
	}

	db.idCounter++
	ts := db.now().UTC()
	m := domain.Measurement{
		ID:        db.idCounter,
		UserID:    userID,
		Date:      day,
		Calories:  &calories,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	db.measurements = append(db.measurements, m)
	out := m
	return &out, nil
}

// MeasurementByDate returns the row for the day, or nil when absent.
func (db *DB) MeasurementByDate(ctx context.Context, userID int64, day time.Time) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if m := db.findByDate(userID, domain.Day(day)); m != nil {
		out := *m
		return &out, nil
	}
	return nil, nil
}

// MeasurementsByPeriod returns rows with date >= today-days, ascending.
func (db *DB) MeasurementsByPeriod(ctx context.Context, userID int64, days int) ([]domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cutoff := domain.Day(db.now()).AddDate(0, 0, -days)
	out := make([]domain.Measurement, 0)
	for _, m := range db.measurements {
		if m.UserID == userID && !m.Date.Before(cutoff) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// LastMeasurements returns up to limit rows, date descending.
func (db *DB) LastMeasurements(ctx context.Context, userID int64, limit int) ([]domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Measurement, 0)
	for _, m := range db.measurements {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AllMeasurements returns every row for the user, date ascending.
func (db *DB) AllMeasurements(ctx context.Context, userID int64) ([]domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Measurement, 0)
	for _, m := range db.measurements {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// DeleteMeasurement removes the row if present and reports whether anything
// was removed.
func (db *DB) DeleteMeasurement(ctx context.Context, userID int64, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, m := range db.measurements {
		if m.UserID == userID && m.ID == id {
			db.measurements = append(db.measurements[:i], db.measurements[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// UpdateMeasurement applies a partial update; nil fields keep their value.
func (db *DB) UpdateMeasurement(ctx context.Context, userID int64, id int64, upd domain.MeasurementUpdate) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.measurements {
		m := &db.measurements[i]
		if m.UserID != userID || m.ID != id {
			continue
		}
		if upd.Weight != nil {
			m.Weight = copyFloat(upd.Weight)
		}
		if upd.Waist != nil {
			m.Waist = copyFloat(upd.Waist)
		}
		if upd.Neck != nil {
			m.Neck = copyFloat(upd.Neck)
		}
		if upd.Calories != nil {
			m.Calories = copyInt(upd.Calories)
		}
		m.UpdatedAt = db.now().UTC()
		out := *m
		return &out, nil
	}
	return nil, domain.ErrNotFound
}

// --- ProfileRepository ---

// GetOrCreateProfile returns the user's profile, creating it lazily.
func (db *DB) GetOrCreateProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if p, ok := db.profiles[userID]; ok {
		out := *p
		return &out, nil
	}
	ts := db.now().UTC()
	p := &domain.UserProfile{UserID: userID, CreatedAt: ts, UpdatedAt: ts}
	db.profiles[userID] = p
	out := *p
	return &out, nil
}

// SetStartDate upserts the tracking start date.
func (db *DB) SetStartDate(ctx context.Context, userID int64, day time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	day = domain.Day(day)
	ts := db.now().UTC()
	if p, ok := db.profiles[userID]; ok {
		p.StartDate = &day
		p.UpdatedAt = ts
		return nil
	}
	db.profiles[userID] = &domain.UserProfile{UserID: userID, StartDate: &day, CreatedAt: ts, UpdatedAt: ts}
	return nil
}

// StartDate returns the tracking start date, or nil when unset.
func (db *DB) StartDate(ctx context.Context, userID int64) (*time.Time, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok || p.StartDate == nil {
		return nil, nil
	}
	d := *p.StartDate
	return &d, nil
}

func (db *DB) findByDate(userID int64, day time.Time) *domain.Measurement {
	for i := range db.measurements {
		if db.measurements[i].UserID == userID && db.measurements[i].Date.Equal(day) {
			return &db.measurements[i]
		}
	}
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
