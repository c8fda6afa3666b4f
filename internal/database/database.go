package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-qbank-api/internal/models"
)

// Connect opens the configured relational store. Supported drivers are
// "postgres" and "sqlite".
func Connect(driver, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s dsn must not be empty", driver)
	}

	var dialector gorm.Dialector
	switch driver {
	case "", "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	return db, nil
}

// Migrate creates or updates the question bank schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Exam{},
		&models.Subject{},
		&models.Topic{},
		&models.Question{},
		&models.QuestionHistory{},
		&models.ActivityLog{},
	)
}
