package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"deficit/internal/app"
	"deficit/internal/chart"
	"deficit/internal/domain"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.sendWithMarkup(chatID, welcomeText, mainKeyboard())
		case "add":
			b.startDialog(chatID, userID, strings.TrimSpace(msg.CommandArguments()) == "auto")
		case "graph":
			b.sendGraph(ctx, chatID, userID, b.graphPeriod(userID))
		case "delete":
			b.sendDeleteList(ctx, chatID, userID)
		case "set_start":
			b.handleSetStart(ctx, chatID, userID, strings.TrimSpace(msg.CommandArguments()))
		case "cancel":
			b.cancelDialog(chatID, userID)
		default:
			b.send(chatID, "Unknown command. Try /start.")
		}
		return
	}

	// Reply-keyboard buttons arrive as plain text.
	switch msg.Text {
	case buttonAdd:
		b.startDialog(chatID, userID, false)
		return
	case buttonGraph:
		b.sendGraph(ctx, chatID, userID, b.graphPeriod(userID))
		return
	case buttonStartDate:
		b.handleSetStart(ctx, chatID, userID, "")
		return
	case buttonDelete:
		b.sendDeleteList(ctx, chatID, userID)
		return
	}

	if d, ok := b.sessions.Get(userID); ok {
		b.dispatchStep(ctx, chatID, userID, d.HandleText(msg.Text))
		return
	}
	b.send(chatID, "Use /add to enter data, or /start for the full menu.")
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.log.Warn("callback ack failed", "error", err)
	}

	userID := cq.From.ID
	chatID := cq.Message.Chat.ID
	data := cq.Data

	switch {
	case strings.HasPrefix(data, "date:"):
		b.handleDatePick(ctx, chatID, userID, strings.TrimPrefix(data, "date:"))
	case strings.HasPrefix(data, "graph:"):
		days, err := strconv.Atoi(strings.TrimPrefix(data, "graph:"))
		if err != nil || (days != 7 && days != 30 && days != 60) {
			b.send(chatID, "❌ Unknown period.")
			return
		}
		b.rememberGraphPeriod(userID, days)
		b.sendGraph(ctx, chatID, userID, days)
	case strings.HasPrefix(data, "delete:"):
		b.handleDeletePick(ctx, chatID, userID, strings.TrimPrefix(data, "delete:"))
	case strings.HasPrefix(data, "setstart:"):
		b.handleStartDatePick(ctx, chatID, userID, strings.TrimPrefix(data, "setstart:"))
	}
}

// --- data-entry dialogue ---

func (b *Bot) startDialog(chatID, userID int64, auto bool) {
	d, res := app.NewDialog(userID, auto, time.Now())
	b.sessions.Put(d)
	b.dispatchStep(context.Background(), chatID, userID, res)
}

func (b *Bot) cancelDialog(chatID, userID int64) {
	d, ok := b.sessions.Get(userID)
	if !ok {
		b.send(chatID, "Nothing to cancel.")
		return
	}
	res := d.Cancel()
	b.sessions.End(userID)
	b.send(chatID, res.Reply)
}

func (b *Bot) handleDatePick(ctx context.Context, chatID, userID int64, arg string) {
	d, ok := b.sessions.Get(userID)
	if !ok {
		b.send(chatID, "⚠️ No data entry in progress. Use /add to start.")
		return
	}
	daysAgo, err := strconv.Atoi(arg)
	if err != nil || daysAgo < 0 || daysAgo >= app.DateChoices {
		b.send(chatID, "⚠️ Bad date choice. Use /add to start over.")
		return
	}
	day := domain.Day(time.Now()).AddDate(0, 0, -daysAgo)
	b.dispatchStep(ctx, chatID, userID, d.SelectDate(day))
}

// dispatchStep delivers one dialogue turn's outcome: commits a finished
// entry, drops ended sessions, and sends the reply.
func (b *Bot) dispatchStep(ctx context.Context, chatID, userID int64, res app.StepResult) {
	if res.Entry != nil {
		b.commitEntry(ctx, chatID, userID, *res.Entry)
	}
	if res.Done {
		b.sessions.End(userID)
	}
	if res.Reply == "" {
		return
	}
	if res.AskDate {
		b.sendWithMarkup(chatID, res.Reply, dateKeyboard(time.Now()))
		return
	}
	b.send(chatID, res.Reply)
}

func (b *Bot) commitEntry(ctx context.Context, chatID, userID int64, e app.Entry) {
	m, err := b.records.CommitEntry(ctx, userID, e)
	if errors.Is(err, domain.ErrDuplicateDate) {
		b.send(chatID, fmt.Sprintf(
			"⚠️ A record for %s already exists!\nUse /delete to remove the old one first.",
			domain.DisplayDay(domain.Day(e.Date)),
		))
		return
	}
	if err != nil {
		b.log.Error("commit entry failed", "user_id", userID, "error", err)
		b.send(chatID, "❌ Could not save the entry. Please try /add again.")
		return
	}
	b.send(chatID, formatSaved(m, e.Calories))
}

// --- graph ---

func (b *Bot) sendGraph(ctx context.Context, chatID, userID int64, days int) {
	points, summary, err := b.charts.Progress(ctx, userID, days)
	if err != nil {
		b.log.Error("graph query failed", "user_id", userID, "error", err)
		b.send(chatID, "❌ Could not load your data. Please try again.")
		return
	}
	if len(points) == 0 {
		b.send(chatID, "📊 No data to show.\n\nAdd your first record with /add")
		return
	}

	png, err := b.renderer.Render(points, days)
	if err != nil {
		if errors.Is(err, chart.ErrNoData) {
			b.send(chatID, "📊 No data to show for this period.")
			return
		}
		b.log.Error("chart render failed", "user_id", userID, "error", err)
		b.send(chatID, "❌ Sorry, the chart could not be generated. Please try later.")
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "progress.png", Bytes: png})
	photo.Caption = summary.Message()
	photo.ReplyMarkup = periodKeyboard()
	if _, err := b.api.Send(photo); err != nil {
		b.log.Error("send photo failed", "chat_id", chatID, "error", err)
		b.send(chatID, "❌ Sorry, the chart could not be delivered. Please try later.")
	}
}

// --- delete ---

func (b *Bot) sendDeleteList(ctx context.Context, chatID, userID int64) {
	rows, err := b.records.LastN(ctx, userID, 5)
	if err != nil {
		b.log.Error("delete list failed", "user_id", userID, "error", err)
		b.send(chatID, "❌ Could not load your records. Please try again.")
		return
	}
	if len(rows) == 0 {
		b.send(chatID, "📊 No records to delete.\n\nAdd your first record with /add")
		return
	}
	b.sendWithMarkup(chatID, "🗑️ Pick a record to delete:", deleteKeyboard(rows))
}

func (b *Bot) handleDeletePick(ctx context.Context, chatID, userID int64, arg string) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.send(chatID, "❌ Bad record reference.")
		return
	}
	m, err := b.records.Delete(ctx, userID, id)
	if err != nil {
		b.log.Error("delete failed", "user_id", userID, "id", id, "error", err)
		b.send(chatID, "❌ Could not delete the record. Please try again.")
		return
	}
	if m == nil {
		b.send(chatID, "❌ Record not found.")
		return
	}
	b.send(chatID, formatDeleted(m))
}

// --- start date ---

func (b *Bot) handleSetStart(ctx context.Context, chatID, userID int64, arg string) {
	if arg != "" {
		day, err := domain.ParseDisplayDay(arg)
		if err != nil {
			b.send(chatID, "⚠️ Wrong date format.\n\nUse: /set_start DD.MM.YYYY\nFor example: /set_start 19.01.2026")
			return
		}
		b.setStartDate(ctx, chatID, userID, day)
		return
	}

	current, err := b.profiles.StartDate(ctx, userID)
	if err != nil {
		b.log.Error("start date lookup failed", "user_id", userID, "error", err)
		b.send(chatID, "❌ Could not load your start date. Please try again.")
		return
	}
	if current != nil {
		text := fmt.Sprintf(
			"📅 Current start date: %s\n📊 Days elapsed: %d\n\nPick a date to change it, or use:\n/set_start DD.MM.YYYY",
			domain.DisplayDay(*current), b.profiles.DaysSince(*current),
		)
		b.sendWithMarkup(chatID, text, startDateKeyboard(time.Now()))
		return
	}
	b.sendWithMarkup(chatID,
		"📅 Tracking start date is not set.\n\nPick the day your calorie deficit began,\nor use: /set_start DD.MM.YYYY",
		startDateKeyboard(time.Now()),
	)
}

func (b *Bot) handleStartDatePick(ctx context.Context, chatID, userID int64, arg string) {
	day, err := time.Parse("20060102", arg)
	if err != nil {
		b.send(chatID, "❌ Could not set the start date.")
		return
	}
	b.setStartDate(ctx, chatID, userID, day)
}

func (b *Bot) setStartDate(ctx context.Context, chatID, userID int64, day time.Time) {
	err := b.profiles.SetStartDate(ctx, userID, day)
	if errors.Is(err, app.ErrStartDateInFuture) {
		b.send(chatID, "⚠️ The date cannot be in the future.\nTry again, for example: /set_start 19.01.2026")
		return
	}
	if err != nil {
		b.log.Error("set start date failed", "user_id", userID, "error", err)
		b.send(chatID, "❌ Could not set the start date. Please try again.")
		return
	}
	day = domain.Day(day)
	b.send(chatID, fmt.Sprintf(
		"✅ Tracking start date set: %s\n\n📊 Days elapsed: %d\n\nYou can now add entries for that period with /add",
		domain.DisplayDay(day), b.profiles.DaysSince(day),
	))
}
