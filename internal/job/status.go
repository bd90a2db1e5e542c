// Package job derives the coarse aggregate status of a job from its
// work orders.
package job

import (
	"errors"
	"fmt"

	"github.com/zulandar/shopline/internal/models"
	"gorm.io/gorm"
)

// Derive rolls a job's work orders up to a single status:
//
//   - no work orders → unassigned
//   - any active work order → in_progress
//   - no open work orders and every partial order has a remainder,
//     so all target quantity is accounted for → finished
//   - otherwise → assigned
//
// Derive is pure and idempotent: replaying or reordering the events
// that led to a given set of orders yields the same result.
func Derive(orders []models.WorkOrder) string {
	if len(orders) == 0 {
		return models.JobUnassigned
	}

	remainders := make(map[string]bool)
	for _, o := range orders {
		if o.OriginID != nil {
			remainders[*o.OriginID] = true
		}
	}

	open := false
	for _, o := range orders {
		switch o.Status {
		case models.StatusActive:
			return models.JobInProgress
		case models.StatusQueued, models.StatusPaused:
			open = true
		case models.StatusPartial:
			// A partial order's quantity is only accounted for once its
			// remainder chain exists and has itself closed out.
			if !remainders[o.ID] {
				open = true
			}
		}
	}

	if !open {
		return models.JobFinished
	}
	return models.JobAssigned
}

// Refresh recomputes and stores a job's cached status. Safe to call
// from the transition transaction and again from changefeed consumers.
func Refresh(tx *gorm.DB, jobID string) (string, error) {
	var j models.Job
	if err := tx.Where("id = ?", jobID).First(&j).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("job: not found: %s", jobID)
		}
		return "", fmt.Errorf("job: get %s: %w", jobID, err)
	}

	var orders []models.WorkOrder
	if err := tx.Where("job_id = ?", jobID).Find(&orders).Error; err != nil {
		return "", fmt.Errorf("job: orders for %s: %w", jobID, err)
	}

	status := Derive(orders)
	if status == j.CachedStatus {
		return status, nil
	}
	if err := tx.Model(&models.Job{}).Where("id = ?", jobID).
		Update("cached_status", status).Error; err != nil {
		return "", fmt.Errorf("job: refresh %s: %w", jobID, err)
	}
	return status, nil
}

// Get retrieves a job by ID.
func Get(db *gorm.DB, id string) (*models.Job, error) {
	var j models.Job
	if err := db.Where("id = ?", id).First(&j).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job: not found: %s", id)
		}
		return nil, fmt.Errorf("job: get %s: %w", id, err)
	}
	return &j, nil
}
