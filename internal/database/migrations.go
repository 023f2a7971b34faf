package database

import (
	"gorm.io/gorm"

	"github.com/eventra/eventra/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.CalendarEntry{},
		&models.Notification{},
	)
}
