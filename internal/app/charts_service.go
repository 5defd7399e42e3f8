package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deficit/internal/domain"
)

// ChartsService encapsulates progress-chart use cases.
type ChartsService struct {
	repo domain.MeasurementRepository
}

// NewChartsService creates a ChartsService backed by the given repository.
func NewChartsService(repo domain.MeasurementRepository) *ChartsService {
	return &ChartsService{repo: repo}
}

// MetricDelta is one metric's start-to-current change over a period.
type MetricDelta struct {
	Start   float64
	Current float64
	Diff    float64
}

// Summary holds per-metric deltas. A metric with no data points in the
// period is nil and never appears in the rendered message; it is omitted
// rather than shown as a misleading zero.
type Summary struct {
	Weight *MetricDelta
	Waist  *MetricDelta
	Neck   *MetricDelta
}

// Progress returns the period's measurements (ascending by date) together
// with the per-metric summary. An empty period yields an empty slice, not an
// error.
func (s *ChartsService) Progress(ctx context.Context, userID int64, days int) ([]domain.Measurement, Summary, error) {
	if days <= 0 {
		return nil, Summary{}, errors.New("days must be > 0")
	}
	points, err := s.repo.MeasurementsByPeriod(ctx, userID, days)
	if err != nil {
		return nil, Summary{}, err
	}
	return points, Summarize(points), nil
}

// Summarize computes per-metric deltas over an ascending-by-date sequence.
// Each metric is processed independently: only rows where that field is
// present contribute, start is the first such value and current the last.
func Summarize(points []domain.Measurement) Summary {
	return Summary{
		Weight: deltaOf(points, func(m *domain.Measurement) *float64 { return m.Weight }),
		Waist:  deltaOf(points, func(m *domain.Measurement) *float64 { return m.Waist }),
		Neck:   deltaOf(points, func(m *domain.Measurement) *float64 { return m.Neck }),
	}
}

func deltaOf(points []domain.Measurement, field func(*domain.Measurement) *float64) *MetricDelta {
	var first, last *float64
	for i := range points {
		if v := field(&points[i]); v != nil {
			if first == nil {
				first = v
			}
			last = v
		}
	}
	if first == nil {
		return nil
	}
	return &MetricDelta{Start: *first, Current: *last, Diff: *last - *first}
}

// Message formats the summary as directional human-readable deltas.
func (s Summary) Message() string {
	var b strings.Builder
	b.WriteString("📊 Progress:\n")
	writeDelta(&b, "Weight", s.Weight, "kg")
	writeDelta(&b, "Waist", s.Waist, "cm")
	writeDelta(&b, "Neck", s.Neck, "cm")
	return b.String()
}

func writeDelta(b *strings.Builder, name string, d *MetricDelta, unit string) {
	if d == nil {
		return
	}
	arrow := "➡️"
	switch {
	case d.Diff < 0:
		arrow = "📉"
	case d.Diff > 0:
		arrow = "📈"
	}
	fmt.Fprintf(b, "\n%s %s: %.1f%s → %.1f%s (%+.1f%s)", arrow, name, d.Start, unit, d.Current, unit, d.Diff, unit)
}
