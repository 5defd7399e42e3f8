package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"deficit/internal/domain"
)

// DialogState tags the current step of the data-entry dialogue.
type DialogState int

const (
	StateDateSelection DialogState = iota
	StateWeight
	StateWaist
	StateNeck
	StateCalories
	StateEnd
)

// DateChoices is how many candidate days (today backwards) the date step
// offers.
const DateChoices = 7

// Dialog is the transient per-user data-entry session. It accumulates fields
// across turns and is discarded entirely when the End state is reached,
// whether by success or cancellation.
type Dialog struct {
	UserID int64
	State  DialogState

	Date   time.Time
	Weight float64
	Waist  *float64
	Neck   *float64
}

// StepResult is the outcome of one dialogue turn.
type StepResult struct {
	Reply   string
	AskDate bool   // present the candidate-day choices with the reply
	Entry   *Entry // set when the dialogue finished and must be committed
	Done    bool   // dialogue ended; the session can be dropped
}

// NewDialog starts a data-entry dialogue. With auto set, today is selected
// without prompting and the dialogue begins at the weight step.
func NewDialog(userID int64, auto bool, today time.Time) (*Dialog, StepResult) {
	d := &Dialog{UserID: userID}
	if auto {
		d.Date = domain.Day(today)
		d.State = StateWeight
		return d, StepResult{Reply: "📊 Starting data entry for today.\n\nEnter weight (kg):"}
	}
	d.State = StateDateSelection
	return d, StepResult{Reply: "📊 Starting data entry.\n\nWhich day is this entry for?", AskDate: true}
}

// SelectDate handles the date-choice press. Outside the date step it is a
// stale button and is ignored.
func (d *Dialog) SelectDate(day time.Time) StepResult {
	if d.State != StateDateSelection {
		return StepResult{Reply: "That choice is no longer active."}
	}
	d.Date = domain.Day(day)
	d.State = StateWeight
	return StepResult{Reply: fmt.Sprintf("📅 Date: %s\n\nEnter weight (kg):", domain.DisplayDay(d.Date))}
}

// HandleText advances the dialogue with one free-text input. Invalid input
// re-prompts in the same state; fields already collected are preserved.
func (d *Dialog) HandleText(text string) StepResult {
	switch d.State {
	case StateDateSelection:
		return StepResult{Reply: "Pick a day with the buttons above, or /cancel.", AskDate: false}
	case StateWeight:
		return d.weightInput(text)
	case StateWaist:
		return d.waistInput(text)
	case StateNeck:
		return d.neckInput(text)
	case StateCalories:
		return d.caloriesInput(text)
	}
	return StepResult{Done: true}
}

// Cancel abandons the dialogue from any state, discarding all partially
// entered fields.
func (d *Dialog) Cancel() StepResult {
	d.State = StateEnd
	return StepResult{Reply: "❌ Data entry cancelled.\nUse /add to start again.", Done: true}
}

func (d *Dialog) weightInput(text string) StepResult {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return StepResult{Reply: "⚠️ Invalid input. Enter a number (e.g. 75.5).\nTry again:"}
	}
	if v <= 0 {
		return StepResult{Reply: "⚠️ Weight must be a positive number.\nTry again:"}
	}
	d.Weight = v
	d.State = StateWaist
	return StepResult{Reply: fmt.Sprintf("✅ Weight: %v kg\n\nEnter waist (cm) or skip (0, -, skip):", v)}
}

func (d *Dialog) waistInput(text string) StepResult {
	if isSkip(text) {
		d.Waist = nil
		d.State = StateNeck
		return StepResult{Reply: "⏭️ Waist: skipped\n\nEnter neck (cm) or skip (0, -, skip):"}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return StepResult{Reply: "⚠️ Invalid input. Enter a number (e.g. 85.0), or 0, - or skip to skip.\nTry again:"}
	}
	if v <= 0 {
		return StepResult{Reply: "⚠️ Waist must be a positive number, or 0, - or skip to skip.\nTry again:"}
	}
	d.Waist = &v
	d.State = StateNeck
	return StepResult{Reply: fmt.Sprintf("✅ Waist: %v cm\n\nEnter neck (cm) or skip (0, -, skip):", v)}
}

func (d *Dialog) neckInput(text string) StepResult {
	if isSkip(text) {
		d.Neck = nil
		d.State = StateCalories
		return StepResult{Reply: "⏭️ Neck: skipped\n\nEnter calories for the previous day:"}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return StepResult{Reply: "⚠️ Invalid input. Enter a number (e.g. 38.5), or 0, - or skip to skip.\nTry again:"}
	}
	if v <= 0 {
		return StepResult{Reply: "⚠️ Neck must be a positive number, or 0, - or skip to skip.\nTry again:"}
	}
	d.Neck = &v
	d.State = StateCalories
	return StepResult{Reply: fmt.Sprintf("✅ Neck: %v cm\n\nEnter calories for the previous day:", v)}
}

func (d *Dialog) caloriesInput(text string) StepResult {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return StepResult{Reply: "⚠️ Invalid input. Enter a whole number (e.g. 2200).\nTry again:"}
	}
	if v <= 0 {
		return StepResult{Reply: "⚠️ Calories must be a positive number.\nTry again:"}
	}
	d.State = StateEnd
	return StepResult{
		Done: true,
		Entry: &Entry{
			Date:     d.Date,
			Weight:   d.Weight,
			Waist:    d.Waist,
			Neck:     d.Neck,
			Calories: v,
		},
	}
}

// isSkip reports whether text is one of the skip tokens, matched
// case-insensitively after trimming.
func isSkip(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "0", "-", "skip", "пропустить":
		return true
	}
	return false
}
