package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ananth-NQI/servicebook-backend/internal/config"
	"github.com/Ananth-NQI/servicebook-backend/internal/logger"
	"github.com/Ananth-NQI/servicebook-backend/internal/models"
)

// Connect opens the PostgreSQL connection pool.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	logger.Log.Infof("Connecting to PostgreSQL at %s:%s/%s", cfg.Host, cfg.Port, cfg.Name)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.New(logger.Log, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Log.Info("Database connected successfully")
	return db, nil
}

// Migrate creates or updates the booking table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Booking{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Log.Info("Database migrations completed")
	return nil
}
