package repository

import (
	"golang-admin-command-runner/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables owned by this service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserEntity{},
		&models.CommandRunEntity{},
	)
}
