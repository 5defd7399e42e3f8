// Package scheduler runs the daily data-entry reminder.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"deficit/internal/logger"
)

// Sender delivers the reminder prompt. The Telegram bot satisfies this.
type Sender interface {
	SendReminder(chatID int64, text string) error
}

const reminderText = "⏰ Good morning! Time to log today's data.\n\n" +
	"Send /add auto to start entering today's numbers,\n" +
	"or use /add to pick another day."

// Reminder is one recurring job that prompts a single configured recipient
// once a day. There is no retry, no backoff and no fan-out.
type Reminder struct {
	cron   *cron.Cron
	log    *logger.Logger
	sender Sender
	chatID int64
}

// New builds a Reminder firing daily at the wall-clock time "HH:MM" in the
// named timezone.
func New(log *logger.Logger, sender Sender, chatID int64, at, tz string) (*Reminder, error) {
	hour, minute, err := ParseClock(at)
	if err != nil {
		return nil, err
	}
	r := &Reminder{
		cron:   cron.New(),
		log:    log.With("component", "reminder"),
		sender: sender,
		chatID: chatID,
	}
	spec := fmt.Sprintf("CRON_TZ=%s %d %d * * *", tz, minute, hour)
	if _, err := r.cron.AddFunc(spec, r.fire); err != nil {
		return nil, fmt.Errorf("reminder schedule: %w", err)
	}
	return r, nil
}

// Start launches the cron loop in its own goroutine.
func (r *Reminder) Start() {
	r.cron.Start()
	r.log.Info("daily reminder scheduled", "chat_id", r.chatID)
}

// Stop halts the cron loop; running jobs finish first.
func (r *Reminder) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reminder) fire() {
	if err := r.sender.SendReminder(r.chatID, reminderText); err != nil {
		r.log.Error("reminder send failed", "chat_id", r.chatID, "error", err)
		return
	}
	r.log.Info("reminder sent", "chat_id", r.chatID)
}

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(s string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad clock time %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad clock time %q, want HH:MM", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("bad clock time %q, want HH:MM", s)
	}
	return hour, minute, nil
}
