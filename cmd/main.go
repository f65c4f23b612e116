package main

import (
	"os"
	"os/signal"
	"syscall"

	"gasbot/config"
	"gasbot/pkg/bot"
	"gasbot/pkg/logger"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	if cfg.TelegramBotToken == "" {
		log.Error("TG_BOT_TOKEN is not set")
		os.Exit(1)
	}

	// 3. Initialize the Telegram frontend; each chat gets its own
	// client runtime bound to a per-chat storage file.
	gasBot, err := bot.New(&cfg, log)
	if err != nil {
		log.Error("Failed to initialize bot", logger.Error(err))
		os.Exit(1)
	}

	go func() {
		log.Info("🚀 gasbot is starting...")
		gasBot.Start()
	}()

	// 4. Graceful shutdown listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("Stopping bot and shutting down...")
	gasBot.Stop()
}
