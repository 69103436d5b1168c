package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"petmemorial/internal/config"
	"petmemorial/internal/database"
	"petmemorial/internal/domain/booking"
	"petmemorial/internal/domain/notification"
	"petmemorial/internal/domain/reminder"
	"petmemorial/internal/email"
	"petmemorial/internal/live"
	"petmemorial/internal/middleware"
	"petmemorial/internal/pkg/dedupe"
	"petmemorial/internal/pkg/jwt"
	"petmemorial/internal/pkg/logger"
	"petmemorial/internal/pkg/mailer"
	"petmemorial/internal/pkg/sms"
	"petmemorial/internal/pkg/validator"
	"petmemorial/internal/pkg/worker"
)

const shutdownTimeout = 15 * time.Second

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
	log := logger.L()

	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.UseJSONFieldNames()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	guard := notification.NewSchemaGuard(db)
	if err := guard.Prepare(ctx); err != nil {
		return fmt.Errorf("prepare notification tables: %w", err)
	}

	pool, err := worker.NewPool("notification-fanout", cfg.FanoutPoolSize, log)
	if err != nil {
		return fmt.Errorf("create fanout pool: %w", err)
	}
	defer pool.Release()

	rdb := dedupe.NewClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	hub := live.NewHub(log)
	bookings := booking.NewRepository(db)

	notifications := notification.NewService(notification.Deps{
		DB:       db,
		Guard:    guard,
		Bookings: bookings,
		Renderer: email.NewRenderer(cfg.ProductName, cfg.AppBaseURL),
		Email:    mailer.New(cfg.SMTP, log),
		SMS:      sms.New(cfg.SMS, log),
		Live:     hub,
		Dedupe:   dedupe.New(rdb, cfg.DedupeTTL, log),
		Pool:     pool,
		Logger:   log,
	})

	reminders := reminder.NewRepository(db, guard)
	scheduler := reminder.NewScheduler(bookings, reminders, cfg.Location(), log)

	tokens := jwt.New(cfg.JWTSecret, 24*time.Hour)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(log),
		middleware.ErrorLogger(log),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(tokens))
		notification.RegisterRoutes(protected, notification.NewHandler(notifications))
		live.RegisterRoutes(protected, live.NewHandler(hub, cfg.CORSAllowedOrigins, log))

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(tokens), middleware.AdminOnly())
		notification.RegisterAdminRoutes(admin, notification.NewAdminHandler(notifications))
	}

	internal := r.Group("/internal/v1")
	internal.Use(middleware.InternalTokenAuth(cfg.InternalToken, cfg.InternalAllowedIPs, log))
	{
		notification.RegisterInternalRoutes(internal, notification.NewEventsHandler(notifications))
		reminder.RegisterInternalRoutes(internal, reminder.NewHandler(scheduler, reminders))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	log.Info("notification service started", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
