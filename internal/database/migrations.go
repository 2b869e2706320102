package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
// Ordering matters for foreign keys: referenced tables migrate first.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Home{},
		&models.HomeShare{},
		&models.PendingHomeShare{},
		&models.Room{},
		&models.Item{},
		&models.Task{},
		&models.Paint{},
		&models.Flooring{},
		&models.ActivityLog{},
	)
}

// Migrate is the start-up helper used by the server.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
