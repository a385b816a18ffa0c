package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotelfolio/internal/config"
	"hotelfolio/internal/database"
	"hotelfolio/internal/domain/exchange"
	"hotelfolio/internal/notification"
	"hotelfolio/internal/pkg/logger"
	"hotelfolio/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	deps := server.Deps{
		Mailer:    notification.NewDevConsoleMailer(zl),
		Publisher: notification.NopPublisher{},
		RateCache: exchange.NewMemoryCache(),
		Rates: exchange.NewFlutterwaveClient(cfg.FlutterwaveBaseURL, cfg.FlutterwaveSecretKey,
			&http.Client{Timeout: 2 * cfg.ExchangeRateTimeout}),
	}
	if cfg.SMTPAddr != "" {
		deps.Mailer = notification.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	}
	if len(cfg.KafkaBrokers) > 0 {
		kp := notification.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kp.Close(); err != nil {
				zl.Warn("close kafka publisher", zap.Error(err))
			}
		}()
		deps.Publisher = kp
	}
	if cfg.RedisAddr != "" {
		rdb, err := exchange.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		deps.RateCache = exchange.NewRedisCache(rdb)
	}

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(cfg, db, deps, zl)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("api listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := router.Drain(shutdownCtx); err != nil {
		zl.Warn("license notifications still pending", zap.Error(err))
	}
	return nil
}
