package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lcastelli/streampulse/internal/config"
	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/models"
)

var db *gorm.DB

// Initialize sets up the database connection and runs migrations
func Initialize() error {
	cfg := config.Get()

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	gormLogger := logger.NewGormAdapter(logger.DatabaseLogger(), cfg.GetDatabaseLogLevel())

	var err error
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Get returns the database instance
func Get() *gorm.DB {
	return db
}

// Set overrides the database instance, used by tests
func Set(instance *gorm.DB) {
	db = instance
}

// HealthCheck verifies database connectivity
func HealthCheck() error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func Close() error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}

// Migrate runs auto-migrations for all models
func Migrate(instance *gorm.DB) error {
	return instance.AutoMigrate(
		&models.Channel{},
		&models.StreamTestResult{},
		&models.QualityMetrics{},
		&models.TrackedSource{},
		&models.SourceUpdate{},
	)
}
