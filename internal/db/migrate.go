package db

import (
	"fmt"

	"github.com/zulandar/shopline/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Job{},
		&models.Resource{},
		&models.WorkOrder{},
		&models.QueueEntry{},
		&models.ScheduleViewEntry{},
		&models.AuditRecord{},
		&models.ChangeEvent{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
