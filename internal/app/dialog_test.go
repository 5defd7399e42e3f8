package app_test

import (
	"testing"
	"time"

	"deficit/internal/app"
	"deficit/internal/domain"
)

var testToday = time.Date(2026, 2, 10, 15, 4, 5, 0, time.UTC)

func TestNewDialog_DateSelectionFirst(t *testing.T) {
	d, res := app.NewDialog(1, false, testToday)
	if d.State != app.StateDateSelection {
		t.Fatalf("expected DateSelection state, got %v", d.State)
	}
	if !res.AskDate {
		t.Error("expected date choices to be offered")
	}
	if res.Done || res.Entry != nil {
		t.Error("dialog should not be done at start")
	}
}

func TestNewDialog_AutoSelectsToday(t *testing.T) {
	d, res := app.NewDialog(1, true, testToday)
	if d.State != app.StateWeight {
		t.Fatalf("expected Weight state, got %v", d.State)
	}
	if !d.Date.Equal(domain.Day(testToday)) {
		t.Errorf("expected today %v, got %v", domain.Day(testToday), d.Date)
	}
	if res.AskDate {
		t.Error("auto start must not prompt for a date")
	}
}

func TestDialog_FullScenario(t *testing.T) {
	d, _ := app.NewDialog(1, false, testToday)

	res := d.SelectDate(testToday)
	if d.State != app.StateWeight {
		t.Fatalf("after date pick expected Weight, got %v", d.State)
	}
	if res.Done {
		t.Fatal("dialog ended early")
	}

	res = d.HandleText("75.5")
	if d.State != app.StateWaist {
		t.Fatalf("after weight expected Waist, got %v", d.State)
	}

	res = d.HandleText("skip")
	if d.State != app.StateNeck {
		t.Fatalf("after waist skip expected Neck, got %v", d.State)
	}
	if d.Waist != nil {
		t.Errorf("skipped waist must be absent, got %v", *d.Waist)
	}

	res = d.HandleText("38")
	if d.State != app.StateCalories {
		t.Fatalf("after neck expected Calories, got %v", d.State)
	}

	res = d.HandleText("2200")
	if !res.Done {
		t.Fatal("expected dialog to finish")
	}
	if res.Entry == nil {
		t.Fatal("expected an entry to commit")
	}
	e := res.Entry
	if e.Weight != 75.5 {
		t.Errorf("weight = %v, want 75.5", e.Weight)
	}
	if e.Waist != nil {
		t.Errorf("waist = %v, want absent", e.Waist)
	}
	if e.Neck == nil || *e.Neck != 38 {
		t.Errorf("neck = %v, want 38", e.Neck)
	}
	if e.Calories != 2200 {
		t.Errorf("calories = %d, want 2200", e.Calories)
	}
	if !e.Date.Equal(domain.Day(testToday)) {
		t.Errorf("date = %v, want %v", e.Date, domain.Day(testToday))
	}
}

func TestDialog_SkipTokens(t *testing.T) {
	tokens := []string{"0", "-", "skip", "пропустить", "SKIP", " Skip ", "ПРОПУСТИТЬ"}
	for _, tok := range tokens {
		t.Run(tok, func(t *testing.T) {
			d, _ := app.NewDialog(1, true, testToday)
			d.HandleText("80")
			res := d.HandleText(tok)
			if d.State != app.StateNeck {
				t.Fatalf("token %q did not advance: state %v, reply %q", tok, d.State, res.Reply)
			}
			if d.Waist != nil {
				t.Errorf("token %q stored %v, want absent", tok, *d.Waist)
			}
		})
	}
}

func TestDialog_ValidationSelfLoops(t *testing.T) {
	tests := []struct {
		name  string
		setup []string // inputs to reach the state under test
		input string
		state app.DialogState
	}{
		{"weight non-numeric", nil, "abc", app.StateWeight},
		{"weight zero", nil, "0", app.StateWeight},
		{"weight negative", nil, "-5", app.StateWeight},
		{"waist non-numeric", []string{"80"}, "wat", app.StateWaist},
		{"waist negative", []string{"80"}, "-3", app.StateWaist},
		{"neck non-numeric", []string{"80", "90"}, "nope", app.StateNeck},
		{"calories non-numeric", []string{"80", "90", "38"}, "lots", app.StateCalories},
		{"calories fractional", []string{"80", "90", "38"}, "21.5", app.StateCalories},
		{"calories zero", []string{"80", "90", "38"}, "0", app.StateCalories},
		{"calories negative", []string{"80", "90", "38"}, "-100", app.StateCalories},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := app.NewDialog(1, true, testToday)
			for _, in := range tc.setup {
				d.HandleText(in)
			}
			res := d.HandleText(tc.input)
			if d.State != tc.state {
				t.Fatalf("state = %v, want self-loop in %v", d.State, tc.state)
			}
			if res.Reply == "" {
				t.Error("expected a validation message")
			}
			if res.Done || res.Entry != nil {
				t.Error("invalid input must not finish the dialog")
			}
		})
	}
}

func TestDialog_ValidationPreservesCollectedFields(t *testing.T) {
	d, _ := app.NewDialog(1, true, testToday)
	d.HandleText("75.5")
	d.HandleText("88")

	// Bad neck input must not disturb weight or waist.
	d.HandleText("junk")
	if d.Weight != 75.5 {
		t.Errorf("weight lost: %v", d.Weight)
	}
	if d.Waist == nil || *d.Waist != 88 {
		t.Errorf("waist lost: %v", d.Waist)
	}

	res := d.HandleText("38")
	if d.State != app.StateCalories {
		t.Fatalf("valid retry did not advance: %v (%q)", d.State, res.Reply)
	}
}

func TestDialog_WaistZeroIsSkipNotValue(t *testing.T) {
	d, _ := app.NewDialog(1, true, testToday)
	d.HandleText("80")
	d.HandleText("0")
	if d.State != app.StateNeck {
		t.Fatal("zero should be treated as skip for waist")
	}
	if d.Waist != nil {
		t.Errorf("zero must never be stored, got %v", *d.Waist)
	}
}

func TestDialog_CancelFromAnyState(t *testing.T) {
	setups := map[string][]string{
		"date selection": nil,
		"weight":         nil,
		"waist":          {"80"},
		"calories":       {"80", "90", "38"},
	}
	for name, inputs := range setups {
		t.Run(name, func(t *testing.T) {
			auto := name != "date selection"
			d, _ := app.NewDialog(1, auto, testToday)
			for _, in := range inputs {
				d.HandleText(in)
			}
			res := d.Cancel()
			if !res.Done {
				t.Error("cancel must end the dialog")
			}
			if res.Entry != nil {
				t.Error("cancel must not commit anything")
			}
			if d.State != app.StateEnd {
				t.Errorf("state = %v, want End", d.State)
			}
		})
	}
}

func TestDialog_TextDuringDateSelection(t *testing.T) {
	d, _ := app.NewDialog(1, false, testToday)
	res := d.HandleText("75.5")
	if d.State != app.StateDateSelection {
		t.Fatal("free text must not advance date selection")
	}
	if res.Done {
		t.Error("dialog must stay open")
	}
}

func TestDialog_StaleDatePick(t *testing.T) {
	d, _ := app.NewDialog(1, true, testToday)
	res := d.SelectDate(testToday.AddDate(0, 0, -1))
	if d.State != app.StateWeight {
		t.Fatal("stale date pick must not change state")
	}
	if !d.Date.Equal(domain.Day(testToday)) {
		t.Error("stale date pick must not change the selected date")
	}
	if res.Done {
		t.Error("dialog must stay open")
	}
}

func TestSessions_OverwriteAndEnd(t *testing.T) {
	s := app.NewSessions()

	d1, _ := app.NewDialog(7, true, testToday)
	s.Put(d1)
	d2, _ := app.NewDialog(7, false, testToday)
	s.Put(d2)

	got, ok := s.Get(7)
	if !ok || got != d2 {
		t.Fatal("new dialog must overwrite the stale one")
	}

	s.End(7)
	if _, ok := s.Get(7); ok {
		t.Error("ended session must be gone")
	}

	if _, ok := s.Get(8); ok {
		t.Error("unknown user must have no session")
	}
}
