package main

import (
	"TeleVault/config"
	"TeleVault/internal/bot"
	"TeleVault/internal/flow"
	"TeleVault/internal/handler"
	"TeleVault/internal/mq"
	"TeleVault/internal/repo"
	"TeleVault/internal/service"
	"TeleVault/internal/session"
	"TeleVault/internal/storage"
	"TeleVault/internal/transport"
	"TeleVault/router"
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	config.InitConfig()
	initLogging()

	repo.InitDb()
	repo.InitRedis()
	storage.InitMinio()

	if err := service.SeedDefaultSettings(); err != nil {
		log.Fatalf("seed settings fail: %v", err)
	}
	for _, id := range config.AppConfig.AdminIDs {
		if err := service.EnsureAdmin(id); err != nil {
			log.Printf("ensure admin %d fail: %v", id, err)
		}
	}

	tg, err := transport.NewTelegram(config.AppConfig.BotToken)
	if err != nil {
		log.Fatalf("telegram connect fail: %v", err)
	}
	if config.AppConfig.BotUsername == "" {
		config.AppConfig.BotUsername = tg.Username()
	}

	var sessions session.Store
	if repo.Redis != nil {
		sessions = session.NewRedisStore(repo.Redis)
	} else {
		sessions = session.NewMemoryStore()
	}

	var queue service.Publisher
	if config.AppConfig.RabbitMQURL != "" {
		client, err := mq.GetPublisher()
		if err != nil {
			log.Printf("rabbitmq connect fail, delivering notifications inline: %v", err)
		} else {
			queue = client
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &bot.Bot{
		Telegram: tg,
		Sessions: sessions,
		Upload:   &flow.UploadFlow{Sessions: sessions, Transport: tg, Queue: queue},
		Download: &flow.DownloadFlow{Sessions: sessions, Transport: tg, Store: storage.Default, Queue: queue},
		Search:   &flow.SearchFlow{Sessions: sessions, Transport: tg},
		Queue:    queue,
	}
	go b.Run(ctx)
	go service.RunBackupScheduler(ctx, tg, queue)
	if queue == nil {
		go sweepUndelivered(ctx, tg)
	}

	api := handler.NewAPIHandler(storage.Default)
	console := handler.NewConsoleHandler(tg, queue)
	r := router.InitRouter(api, console)

	go func() {
		if err := r.Run(config.AppConfig.HTTPAddr); err != nil {
			log.Fatalf("http server fail: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
}

// sweepUndelivered retries notifications that were persisted but never
// delivered, for deployments running without the queue worker.
func sweepUndelivered(ctx context.Context, sender service.Sender) {
	pending, err := service.UndeliveredNotifications(100)
	if err != nil {
		log.Printf("notification sweep fail: %v", err)
		return
	}
	for _, n := range pending {
		if err := service.DeliverNotification(ctx, sender, n.ID); err != nil {
			log.Printf("notification %d redelivery fail: %v", n.ID, err)
		}
	}
}

// initLogging tees logs to stderr and a rotated file.
func initLogging() {
	if config.AppConfig.LogFile == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   config.AppConfig.LogFile,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
