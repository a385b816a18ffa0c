package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"hotelfolio/internal/config"
	"hotelfolio/internal/database"
	"hotelfolio/internal/domain/license"
	"hotelfolio/internal/pkg/logger"
)

// license_expiry marks active licences whose period has ended as expired.
// Run it from cron; it is safe to run repeatedly.
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

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := license.NewRepository(db).ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		zl.Fatal("expire licenses failed", zap.Error(err))
	}
	zl.Info("license expiry completed", zap.Int64("expired", n))
}
