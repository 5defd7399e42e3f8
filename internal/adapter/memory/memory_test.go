package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"deficit/internal/domain"
)

var fixedNow = time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)

func newTestDB() *DB {
	db := New()
	db.SetClock(func() time.Time { return fixedNow })
	return db
}

func fp(v float64) *float64 { return &v }

func TestCreateMeasurement_DuplicateDate(t *testing.T) {
	db := newTestDB()
	ctx := context.Background()
	day := domain.Day(fixedNow)

	m, err := db.CreateMeasurement(ctx, 1, day, fp(80), nil, nil, nil)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if m.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if !m.Date.Equal(day) {
		t.Errorf("date = %v, want %v", m.Date, day)
	}

	// Same user, same day: rejected regardless of time-of-day.
	if _, err := db.CreateMeasurement(ctx, 1, day.Add(10*time.Hour), fp(81), nil, nil, nil); !errors.Is(err, domain.ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got %v", err)
	}

	// Another user may use the same day.
	if _, err := db.CreateMeasurement(ctx, 2, day, fp(70), nil, nil, nil); err != nil {
		t.Fatalf("other user same day: %v", err)
	}
}

func TestUpsertCalories_MergeAndCreate(t *testing.T) {
	db := newTestDB()
	ctx := context.Background()
	day := domain.Day(fixedNow)

	created, err := db.CreateMeasurement(ctx, 1, day, fp(80), fp(90), nil, nil)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Merge into the existing row: calories set, other fields untouched.
	m, err := db.UpsertCalories(ctx, 1, day, 2100)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if m.ID != created.ID {
		t.Errorf("upsert created a second row: id %d vs %d", m.ID, created.ID)
	}
	if m.Calories == nil || *m.Calories != 2100 {
		t.Errorf("calories = %v, want 2100", m.Calories)
	}
	if m.Weight == nil || *m.Weight != 80 || m.Waist == nil || *m.Waist != 90 {
		t.Errorf("merge clobbered other fields: %+v", m)
	}

	// Repeating the same write is a no-op in effect.
	m2, err := db.UpsertCalories(ctx, 1, day, 2100)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if m2.ID != created.ID || *m2.Calories != 2100 {
		t.Errorf("second upsert changed the row: %+v", m2)
	}

	// No row for yesterday: a calories-only row appears.
	prev := day.AddDate(0, 0, -1)
	m3, err := db.UpsertCalories(ctx, 1, prev, 1900)
	if err != nil {
		t.Fatalf("upsert on empty day: %v", err)
	}
	if m3.Weight != nil || m3.Waist != nil || m3.Neck != nil {
		t.Errorf("expected calories-only row, got %+v", m3)
	}
	if !m3.Date.Equal(prev) {
		t.Errorf("date = %v, want %v", m3.Date, prev)
	}
}

func TestMeasurementByDate(t *testing.T) {
	db := newTestDB()
	ctx := context.Background()
	day := domain.Day(fixedNow)

	if m, err := db.MeasurementByDate(ctx, 1, day); err != nil || m != nil {
		t.Fatalf("empty lookup = (%v, %v), want (nil, nil)", m, err)
	}

	if _, err := db.CreateMeasurement(ctx, 1, day, fp(80), nil, nil, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	m, err := db.MeasurementByDate(ctx, 1, day.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if m == nil || m.Weight == nil || *m.Weight != 80 {
		t.Errorf("lookup = %+v", m)
	}
}

func TestMeasurementsByPeriod_CutoffAndOrder(t *testing.T) {
	db := newTestDB()
	ctx := context.Background()
	today := domain.Day(fixedNow)

	for _, back := range []int{40, 5, 0, 12} {
		if _, err := db.CreateMeasurement(ctx, 1, today.AddDate(0, 0, -back), fp(80+float64(back)), nil, nil, nil); err != nil {
			t.Fatalf("insert -%d: %v", back, err)
		}
	}

	rows, err := db.MeasurementsByPeriod(ctx, 1, 30)
	if err != nil {
		t.Fatalf("by period: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows within 30 days, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Date.Before(rows[i].Date) {
			t.Errorf("rows out of ascending order: %v then %v", rows[i-1].Date, rows[i].Date)
		}
	}
}

func TestLastMeasurements_DescendingAndLimit(t *testing.T) {
	db := newTestDB()
	ctx := context.Background()
	today := domain.Day(fixedNow)

	for back := 0; back < 7; back++ {
		if _, err := db.CreateMeasurement(ctx, 1, today.AddDate(0, 0, -back), fp(80), nil, nil, nil); err != nil {
			t.Fatalf("insert -%d: %v", back, err)
		}
	}

	rows, err := db.LastMeasurements(ctx, 1, 5)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if !rows[0].Date.Equal(today) {
		t.Errorf("most recent first: got %v, want %v", rows[0].Date, today)
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Date.After(rows[i].Date) {
			t.Errorf("rows out of descending order: %v then %v", rows[i-1].Date, rows[i].Date)
		}
	}
}

func TestDeleteMeasurement(t *testing.T) {
	db := newTestDB()
	ctx := context.Background()
	day := domain.Day(fixedNow)

	m, err := db.CreateMeasurement(ctx, 1, day, fp(80), nil, nil, nil)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Missing id and wrong user are not errors, just not-deleted.
	if ok, err := db.DeleteMeasurement(ctx, 1, m.ID+100); err != nil || ok {
		t.Errorf("missing id = (%v, %v), want (false, nil)", ok, err)
	}
	if ok, err := db.DeleteMeasurement(ctx, 2, m.ID); err != nil || ok {
		t.Errorf("wrong user = (%v, %v), want (false, nil)", ok, err)
	}

	ok, err := db.DeleteMeasurement(ctx, 1, m.ID)
	if err != nil || !ok {
		t.Fatalf("delete = (%v, %v), want (true, nil)", ok, err)
	}
	if rows, _ := db.AllMeasurements(ctx, 1); len(rows) != 0 {
		t.Errorf("expected empty store after delete, got %d rows", len(rows))
	}

	// The freed day may be reused.
	if _, err := db.CreateMeasurement(ctx, 1, day, fp(81), nil, nil, nil); err != nil {
		t.Fatalf("reinsert after delete: %v", err)
	}
}

func TestUpdateMeasurement_Partial(t *testing.T) {
	db := newTestDB()
	ctx := context.Background()
	day := domain.Day(fixedNow)

	m, err := db.CreateMeasurement(ctx, 1, day, fp(80), fp(90), fp(38), nil)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	upd, err := db.UpdateMeasurement(ctx, 1, m.ID, domain.MeasurementUpdate{Weight: fp(79.5)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Weight == nil || *upd.Weight != 79.5 {
		t.Errorf("weight = %v, want 79.5", upd.Weight)
	}
	if upd.Waist == nil || *upd.Waist != 90 || upd.Neck == nil || *upd.Neck != 38 {
		t.Errorf("nil fields must keep stored values: %+v", upd)
	}

	if _, err := db.UpdateMeasurement(ctx, 1, m.ID+100, domain.MeasurementUpdate{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing id: expected ErrNotFound, got %v", err)
	}
}

func TestProfileLifecycle(t *testing.T) {
	db := newTestDB()
	ctx := context.Background()

	if d, err := db.StartDate(ctx, 1); err != nil || d != nil {
		t.Fatalf("unset start date = (%v, %v), want (nil, nil)", d, err)
	}

	p, err := db.GetOrCreateProfile(ctx, 1)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if p.UserID != 1 || p.StartDate != nil {
		t.Errorf("fresh profile = %+v", p)
	}

	day := domain.Day(fixedNow).AddDate(0, 0, -14)
	if err := db.SetStartDate(ctx, 1, day); err != nil {
		t.Fatalf("set start date: %v", err)
	}
	d, err := db.StartDate(ctx, 1)
	if err != nil {
		t.Fatalf("start date: %v", err)
	}
	if d == nil || !d.Equal(day) {
		t.Errorf("start date = %v, want %v", d, day)
	}

	// Set before GetOrCreate also creates the profile.
	if err := db.SetStartDate(ctx, 2, day); err != nil {
		t.Fatalf("set start date new user: %v", err)
	}
	if d, _ := db.StartDate(ctx, 2); d == nil || !d.Equal(day) {
		t.Errorf("start date for new user = %v", d)
	}
}
