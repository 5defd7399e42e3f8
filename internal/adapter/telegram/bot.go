// Package telegram is the driving adapter: it routes bot updates to
// application services and renders replies.
package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"deficit/internal/app"
	"deficit/internal/chart"
	"deficit/internal/logger"
)

const defaultGraphPeriod = 30

// Bot wires the Telegram transport to the application services.
type Bot struct {
	api      *tgbotapi.BotAPI
	log      *logger.Logger
	records  *app.RecordService
	charts   *app.ChartsService
	profiles *app.ProfileService
	renderer *chart.Renderer
	sessions *app.Sessions

	mu      sync.Mutex
	periods map[int64]int // remembered graph period per user
}

// New builds the bot against the live Telegram API.
func New(token string, log *logger.Logger, records *app.RecordService, charts *app.ChartsService, profiles *app.ProfileService, renderer *chart.Renderer) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:      api,
		log:      log.With("component", "telegram"),
		records:  records,
		charts:   charts,
		profiles: profiles,
		renderer: renderer,
		sessions: app.NewSessions(),
		periods:  make(map[int64]int),
	}, nil
}

// Username returns the bot account's username.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run polls for updates until the context is cancelled. Each update is
// handled to completion before the next one is taken.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(cfg)
	b.log.Info("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate is the outermost per-interaction boundary: nothing below it
// may crash the process, and every error path ends in a chat message.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var chatID int64
	switch {
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	default:
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic handling update", "panic", r)
			b.send(chatID, "❌ Something went wrong. Please try again.")
		}
	}()

	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// SendReminder satisfies scheduler.Sender.
func (b *Bot) SendReminder(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) graphPeriod(userID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.periods[userID]; ok {
		return p
	}
	return defaultGraphPeriod
}

func (b *Bot) rememberGraphPeriod(userID int64, days int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.periods[userID] = days
}
