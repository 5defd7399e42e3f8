package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"deficit/internal/app"
	"deficit/internal/domain"
)

// Reply-keyboard button labels, also matched as plain messages.
const (
	buttonAdd       = "📊 Add data"
	buttonGraph     = "📈 Graph"
	buttonStartDate = "📅 Start date"
	buttonDelete    = "🗑️ Delete entry"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonAdd),
			tgbotapi.NewKeyboardButton(buttonGraph),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonStartDate),
			tgbotapi.NewKeyboardButton(buttonDelete),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// dateKeyboard offers the last DateChoices days, today first, as the
// date-selection step of the dialogue.
func dateKeyboard(today time.Time) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, app.DateChoices)
	for i := 0; i < app.DateChoices; i++ {
		day := domain.Day(today).AddDate(0, 0, -i)
		var label string
		switch i {
		case 0:
			label = fmt.Sprintf("Today (%s)", day.Format("02.01"))
		case 1:
			label = fmt.Sprintf("Yesterday (%s)", day.Format("02.01"))
		default:
			label = domain.DisplayDay(day)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("date:%d", i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func periodKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Week", "graph:7"),
			tgbotapi.NewInlineKeyboardButtonData("📅 Month", "graph:30"),
			tgbotapi.NewInlineKeyboardButtonData("📅 2 months", "graph:60"),
		),
	)
}

// deleteKeyboard lists recent records as selectable entries.
func deleteKeyboard(rows []domain.Measurement) tgbotapi.InlineKeyboardMarkup {
	buttons := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, m := range rows {
		label := fmt.Sprintf("%s — %s, %s, %s",
			domain.DisplayDay(m.Date),
			formatFloat(m.Weight, "kg"),
			formatFloat(m.Waist, "cm"),
			formatFloat(m.Neck, "cm"),
		)
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("delete:%d", m.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

// startDateKeyboard offers the last 7 days (excluding today) as quick picks
// for the tracking start date.
func startDateKeyboard(today time.Time) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 1; i <= 7; i++ {
		day := domain.Day(today).AddDate(0, 0, -i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(domain.DisplayDay(day), "setstart:"+day.Format("20060102")),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
