package main

import (
	"TeleVault/config"
	"TeleVault/internal/repo"
	"TeleVault/internal/transport"
	"TeleVault/internal/worker"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	config.InitConfig()
	repo.InitDb()

	if config.AppConfig.RabbitMQURL == "" {
		log.Fatal("notify worker requires RABBITMQ_URL")
	}

	tg, err := transport.NewTelegram(config.AppConfig.BotToken)
	if err != nil {
		log.Fatalf("telegram connect failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("notify worker started")
	if err := worker.RunNotifyWorker(ctx, tg); err != nil {
		log.Fatalf("notify worker stopped: %v", err)
	}
}
