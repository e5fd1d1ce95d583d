package database

import (
	"fmt"
	"time"

	"threadcraft-api/internal/domain/billing"
	"threadcraft-api/internal/domain/content"
	"threadcraft-api/internal/domain/users"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB connects to postgres and migrates every domain model.
func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Msg("Connected and migrated successfully")
	return db, nil
}

// Migrate creates or updates the tables. Order matters: referenced tables first.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&billing.Subscription{},
		&billing.WebhookEvent{},
		&content.GeneratedContent{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
