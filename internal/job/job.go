package job

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/zulandar/shopline/internal/models"
	"gorm.io/gorm"
)

// GenerateID creates a unique job ID in job-xxxxx format (5-char hex).
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("job: generate ID: %w", err)
	}
	return "job-" + hex.EncodeToString(b)[:5], nil
}

// Create registers a new job. Jobs start unassigned; status changes
// only through work order derivation.
func Create(db *gorm.DB, name string) (*models.Job, error) {
	if name == "" {
		return nil, fmt.Errorf("job: name is required")
	}
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	j := models.Job{
		ID:           id,
		Name:         name,
		CachedStatus: models.JobUnassigned,
	}
	if err := db.Create(&j).Error; err != nil {
		return nil, fmt.Errorf("job: create: %w", err)
	}
	return &j, nil
}

// List returns all jobs, oldest first.
func List(db *gorm.DB) ([]models.Job, error) {
	var jobs []models.Job
	if err := db.Order("created_at ASC, id ASC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("job: list: %w", err)
	}
	return jobs, nil
}
