package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ngo-connect/donation-portal/donation-portal-backend/internal/campaign"
	"ngo-connect/donation-portal/donation-portal-backend/internal/config"
	"ngo-connect/donation-portal/donation-portal-backend/internal/database"
	"ngo-connect/donation-portal/donation-portal-backend/internal/ledger"
)

// One-shot ledger audit for operators and cron jobs outside the API
// process. Exits non-zero on any failure to read the ledger; mismatches
// are logged, not fatal.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	auditor := ledger.NewAuditor(campaign.NewRepository(db), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := auditor.RunOnce(ctx); err != nil {
		logger.Fatal("ledger audit failed", zap.Error(err))
	}
	logger.Info("ledger audit complete")
}
