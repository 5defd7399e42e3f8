package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"deficit/internal/app"
	"deficit/internal/domain"
)

func day(d int) time.Time {
	return domain.Day(time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC))
}

func TestSummarize_PerMetricDeltas(t *testing.T) {
	points := []domain.Measurement{
		{Date: day(1), Weight: f(82.0), Waist: f(90)},
		{Date: day(2), Weight: f(81.4)},
		{Date: day(3), Weight: f(80.5), Waist: f(88.5)},
	}

	s := app.Summarize(points)

	if s.Weight == nil {
		t.Fatal("weight delta missing")
	}
	if s.Weight.Start != 82.0 || s.Weight.Current != 80.5 {
		t.Errorf("weight delta = %+v", *s.Weight)
	}
	if got := s.Weight.Diff; got != 80.5-82.0 {
		t.Errorf("weight diff = %v", got)
	}
	if s.Waist == nil || s.Waist.Start != 90 || s.Waist.Current != 88.5 {
		t.Errorf("waist delta = %+v", s.Waist)
	}
	if s.Neck != nil {
		t.Errorf("neck delta should be nil when the metric has no points, got %+v", *s.Neck)
	}
}

func TestSummarize_SkipsAbsentRowsWithinMetric(t *testing.T) {
	// The middle row skipped the waist question; the delta must bridge over it.
	points := []domain.Measurement{
		{Date: day(1), Waist: f(91)},
		{Date: day(2), Weight: f(80)},
		{Date: day(3), Waist: f(89)},
	}

	s := app.Summarize(points)
	if s.Waist == nil || s.Waist.Start != 91 || s.Waist.Current != 89 {
		t.Errorf("waist delta = %+v", s.Waist)
	}
}

func TestSummarize_SinglePoint(t *testing.T) {
	s := app.Summarize([]domain.Measurement{{Date: day(1), Weight: f(80)}})
	if s.Weight == nil || s.Weight.Diff != 0 {
		t.Errorf("single point should yield a zero diff, got %+v", s.Weight)
	}
}

func TestSummaryMessage_OmitsMissingMetrics(t *testing.T) {
	s := app.Summary{
		Weight: &app.MetricDelta{Start: 82, Current: 80.5, Diff: -1.5},
	}
	msg := s.Message()
	if !strings.Contains(msg, "📉 Weight: 82.0kg → 80.5kg (-1.5kg)") {
		t.Errorf("message = %q", msg)
	}
	if strings.Contains(msg, "Waist") || strings.Contains(msg, "Neck") {
		t.Errorf("missing metrics must be omitted, got %q", msg)
	}
}

func TestSummaryMessage_Arrows(t *testing.T) {
	tests := []struct {
		name  string
		diff  float64
		arrow string
	}{
		{"down", -0.5, "📉"},
		{"up", 0.5, "📈"},
		{"flat", 0, "➡️"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := app.Summary{Weight: &app.MetricDelta{Start: 80, Current: 80 + tt.diff, Diff: tt.diff}}
			if msg := s.Message(); !strings.Contains(msg, tt.arrow) {
				t.Errorf("message = %q, want arrow %s", msg, tt.arrow)
			}
		})
	}
}

func TestProgress_EmptyPeriod(t *testing.T) {
	repo := &mockMeasurementRepo{
		byPeriodFn: func(context.Context, int64, int) ([]domain.Measurement, error) {
			return []domain.Measurement{}, nil
		},
	}
	svc := app.NewChartsService(repo)

	points, summary, err := svc.Progress(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points, got %d", len(points))
	}
	if summary.Weight != nil || summary.Waist != nil || summary.Neck != nil {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestProgress_RejectsBadPeriod(t *testing.T) {
	svc := app.NewChartsService(&mockMeasurementRepo{})
	if _, _, err := svc.Progress(context.Background(), 1, 0); err == nil {
		t.Error("expected error for days <= 0")
	}
}
