package domain

import (
	"context"
	"time"
)

// Measurement is one per-user-per-day row of body metrics. All four metric
// fields are optional; a row may exist purely to carry calories for a day
// whose measurements were never entered.
type Measurement struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	Date      time.Time  `json:"date"` // calendar day, UTC midnight
	Weight    *float64   `json:"weight,omitempty"`
	Waist     *float64   `json:"waist,omitempty"`
	Neck      *float64   `json:"neck,omitempty"`
	Calories  *int       `json:"calories,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// MeasurementUpdate is a partial update; nil fields keep their stored value.
type MeasurementUpdate struct {
	Weight   *float64
	Waist    *float64
	Neck     *float64
	Calories *int
}

// MeasurementRepository is the port for measurement persistence.
//
// Exactly one row may exist per (user, date); Create reports a second insert
// for the same day as ErrDuplicateDate. UpsertCalories is the one merge-style
// write: it overwrites only the calories field of an existing row, or creates
// a calories-only row when none exists.
type MeasurementRepository interface {
	CreateMeasurement(ctx context.Context, userID int64, day time.Time, weight, waist, neck *float64, calories *int) (*Measurement, error)
	UpsertCalories(ctx context.Context, userID int64, day time.Time, calories int) (*Measurement, error)
	MeasurementByDate(ctx context.Context, userID int64, day time.Time) (*Measurement, error)
	MeasurementsByPeriod(ctx context.Context, userID int64, days int) ([]Measurement, error)
	LastMeasurements(ctx context.Context, userID int64, limit int) ([]Measurement, error)
	AllMeasurements(ctx context.Context, userID int64) ([]Measurement, error)
	DeleteMeasurement(ctx context.Context, userID int64, id int64) (bool, error)
	UpdateMeasurement(ctx context.Context, userID int64, id int64, upd MeasurementUpdate) (*Measurement, error)
}
