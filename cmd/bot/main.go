package main

import (
	"context"
	"flag"
	"log"
	"time"

	"credit-telegram-bot/internal/config"
	"credit-telegram-bot/internal/database"
	"credit-telegram-bot/internal/handlers"
	"credit-telegram-bot/internal/notify"
	"credit-telegram-bot/internal/service"

	tele "gopkg.in/telebot.v3"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrationsPath := flag.String("migrations", "db/migrations", "path to migrations directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.RunMigrations(ctx, *migrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✅ Database migrations completed")

	pref := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	notifier := notify.New(bot, cfg.Telegram.AdminChatID)
	gate := service.NewSingleAuditorGate(cfg.Telegram.AdminChatID)
	svc := service.New(db, gate, notifier)

	h := handlers.New(svc, cfg.Telegram.AdminChatID)
	h.Register(bot)
	h.RegisterAdmin(bot)

	log.Printf("💳 Bot @%s started!", bot.Me.Username)
	log.Printf("👑 Admin chat: %d", cfg.Telegram.AdminChatID)
	bot.Start()
}
