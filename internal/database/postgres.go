package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ngo-connect/donation-portal/donation-portal-backend/internal/auth"
	"ngo-connect/donation-portal/donation-portal-backend/internal/campaign"
	"ngo-connect/donation-portal/donation-portal-backend/internal/config"
	"ngo-connect/donation-portal/donation-portal-backend/internal/organization"
	"ngo-connect/donation-portal/donation-portal-backend/internal/withdrawal"
)

// Connect opens the Postgres connection and runs schema migration.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&auth.User{},
		&organization.Organization{},
		&campaign.Campaign{},
		&campaign.Contribution{},
		&campaign.Comment{},
		&withdrawal.WithdrawalRequest{},
	); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}

	// AutoMigrate cannot express a partial index; this is the storage-level
	// guarantee that an organization has at most one pending request.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_withdrawal_requests_one_pending
		ON withdrawal_requests (organization_id) WHERE status = 'Pending'`).Error; err != nil {
		return fmt.Errorf("database: create pending index: %w", err)
	}
	return nil
}
