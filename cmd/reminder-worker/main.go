package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"petmemorial/internal/config"
	"petmemorial/internal/database"
	"petmemorial/internal/domain/notification"
	"petmemorial/internal/domain/reminder"
	"petmemorial/internal/email"
	"petmemorial/internal/pkg/dedupe"
	"petmemorial/internal/pkg/logger"
	"petmemorial/internal/pkg/mailer"
	"petmemorial/internal/pkg/sms"
)

// reminder-worker polls booking_reminders and sends the ones that are due.
// Live push is not available here; clients pick reminders up on their next fetch.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.L().With(zap.String("component", "reminder-worker"))

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	guard := notification.NewSchemaGuard(db)
	if err := guard.Prepare(ctx); err != nil {
		return fmt.Errorf("prepare notification tables: %w", err)
	}

	rdb := dedupe.NewClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	notifications := notification.NewService(notification.Deps{
		DB:       db,
		Guard:    guard,
		Renderer: email.NewRenderer(cfg.ProductName, cfg.AppBaseURL),
		Email:    mailer.New(cfg.SMTP, log),
		SMS:      sms.New(cfg.SMS, log),
		Dedupe:   dedupe.New(rdb, cfg.DedupeTTL, log),
		Logger:   log,
	})

	d := reminder.NewDispatcher(reminder.NewRepository(db, guard), notifications, cfg.ReminderBatchSize, log)
	d.Run(ctx, cfg.ReminderPollInterval)
	return nil
}
