// Package workorder implements the work order lifecycle: assignment,
// the queued/active/paused/completed/partial state machine, and the
// completion splitter. All state writes are versioned compare-and-set
// updates so concurrent transitions resolve to one winner.
package workorder

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/shopline/internal/event"
	"github.com/zulandar/shopline/internal/job"
	"github.com/zulandar/shopline/internal/models"
	"github.com/zulandar/shopline/internal/queue"
	"gorm.io/gorm"
)

// AssignOpts holds parameters for assigning work to a resource.
type AssignOpts struct {
	JobID          string
	ResourceID     string
	ActorID        string
	TargetQty      int
	ScheduledStart *time.Time
}

// GenerateID creates a unique work order ID in wo-xxxxx format (5-char hex).
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("workorder: generate ID: %w", err)
	}
	return "wo-" + hex.EncodeToString(b)[:5], nil
}

// Assign creates a queued production work order on a resource, appends
// it to the resource's queue and emits the creation event, all in one
// transaction. The estimated duration is computed from the resource's
// current setup time and throughput.
func Assign(db *gorm.DB, opts AssignOpts) (*models.WorkOrder, error) {
	if opts.TargetQty <= 0 {
		return nil, fmt.Errorf("workorder: target quantity must be positive, got %d: %w", opts.TargetQty, ErrInvalidQuantity)
	}

	var created models.WorkOrder

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := job.Get(tx, opts.JobID); err != nil {
			return fmt.Errorf("workorder: job %s: %w", opts.JobID, ErrReferenceNotFound)
		}

		var res models.Resource
		if err := tx.Where("id = ?", opts.ResourceID).First(&res).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("workorder: resource %s: %w", opts.ResourceID, ErrReferenceNotFound)
			}
			return fmt.Errorf("workorder: get resource %s: %w", opts.ResourceID, err)
		}

		duration, err := EstimatedDuration(res.SetupMinutes, opts.TargetQty, res.UnitsPerHour)
		if err != nil {
			return err
		}

		id, err := generateUniqueID(tx)
		if err != nil {
			return err
		}

		created = models.WorkOrder{
			ID:                   id,
			JobID:                opts.JobID,
			ResourceID:           &opts.ResourceID,
			Kind:                 models.KindProduction,
			Status:               models.StatusQueued,
			TargetQty:            opts.TargetQty,
			EstimatedDurationMin: duration,
			ScheduledStart:       opts.ScheduledStart,
			Version:              1,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("workorder: create: %w", err)
		}

		if _, err := queue.Add(tx, opts.ResourceID, id); err != nil {
			return err
		}

		if _, err := job.Refresh(tx, opts.JobID); err != nil {
			return err
		}

		return event.Append(tx, &models.ChangeEvent{
			Kind:          models.EventWorkOrderCreated,
			WorkOrderID:   &created.ID,
			JobID:         opts.JobID,
			ResourceID:    &opts.ResourceID,
			ActorID:       opts.ActorID,
			After:         event.Snapshot(&created),
			SourceVersion: created.Version,
		})
	})

	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Get retrieves a work order by ID.
func Get(db *gorm.DB, id string) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := db.Where("id = ?", id).First(&wo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workorder: %s: %w", id, ErrReferenceNotFound)
		}
		return nil, fmt.Errorf("workorder: get %s: %w", id, err)
	}
	return &wo, nil
}

// ListFilters holds optional filters for listing work orders.
type ListFilters struct {
	JobID      string
	ResourceID string
	Status     string
	Kind       string
}

// List returns work orders matching the given filters, oldest first.
func List(db *gorm.DB, filters ListFilters) ([]models.WorkOrder, error) {
	q := db.Model(&models.WorkOrder{})

	if filters.JobID != "" {
		q = q.Where("job_id = ?", filters.JobID)
	}
	if filters.ResourceID != "" {
		q = q.Where("resource_id = ?", filters.ResourceID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Kind != "" {
		q = q.Where("kind = ?", filters.Kind)
	}

	var orders []models.WorkOrder
	if err := q.Order("created_at ASC, id ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("workorder: list: %w", err)
	}
	return orders, nil
}

// generateUniqueID generates an ID and retries once on collision.
func generateUniqueID(tx *gorm.DB) (string, error) {
	for i := 0; i < 2; i++ {
		id, err := GenerateID()
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&models.WorkOrder{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("workorder: check ID uniqueness: %w", err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("workorder: failed to generate unique ID after retries")
}
