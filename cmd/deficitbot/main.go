package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"deficit/internal/adapter/postgres"
	"deficit/internal/adapter/sqlite"
	"deficit/internal/adapter/telegram"
	"deficit/internal/app"
	"deficit/internal/chart"
	"deficit/internal/domain"
	"deficit/internal/logger"
	"deficit/internal/scheduler"
)

type store interface {
	domain.MeasurementRepository
	domain.ProfileRepository
	Close() error
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(env("LOG_MODE", "development"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	db, err := openStore(log)
	if err != nil {
		log.Fatal("store open failed", "error", err)
	}
	defer func() { _ = db.Close() }()

	renderer, err := chart.NewRenderer(os.Getenv("CHART_FONT"))
	if err != nil {
		log.Fatal("chart renderer init failed", "error", err)
	}

	records := app.NewRecordService(db)
	charts := app.NewChartsService(db)
	profiles := app.NewProfileService(db)

	bot, err := telegram.New(token, log, records, charts, profiles, renderer)
	if err != nil {
		log.Fatal("telegram init failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if chatID := env("REMINDER_CHAT_ID", ""); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatal("bad REMINDER_CHAT_ID", "value", chatID)
		}
		rem, err := scheduler.New(log, bot, id, env("REMINDER_TIME", "09:00"), env("REMINDER_TZ", "Europe/Moscow"))
		if err != nil {
			log.Fatal("reminder init failed", "error", err)
		}
		rem.Start()
		defer rem.Stop()
	} else {
		log.Info("REMINDER_CHAT_ID not set, daily reminder disabled")
	}

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("bot stopped", "error", err)
	}
	log.Info("shutting down")
}

// openStore picks PostgreSQL when DATABASE_URL is set, otherwise the local
// SQLite file.
func openStore(log *logger.Logger) (store, error) {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		log.Info("using postgres store")
		return postgres.Open(connStr)
	}
	path := env("DB_PATH", "./deficit.db")
	log.Info("using sqlite store", "path", path)
	return sqlite.Open(path)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
