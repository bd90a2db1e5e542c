package workorder

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/shopline/internal/event"
	"github.com/zulandar/shopline/internal/job"
	"github.com/zulandar/shopline/internal/models"
	"github.com/zulandar/shopline/internal/queue"
	"gorm.io/gorm"
)

// Start transitions a work order to active: queued → active opens the
// first time-tracking interval and records the starting actor,
// paused → active resumes after a pause.
func Start(db *gorm.DB, id, actorID string) (*models.WorkOrder, error) {
	var updated models.WorkOrder

	err := db.Transaction(func(tx *gorm.DB) error {
		wo, err := Get(tx, id)
		if err != nil {
			return err
		}
		if wo.Status != models.StatusQueued && wo.Status != models.StatusPaused {
			return fmt.Errorf("workorder: cannot start %s from %q: %w", id, wo.Status, ErrInvalidTransition)
		}
		if wo.Status == models.StatusQueued && wo.ResourceID == nil {
			return fmt.Errorf("workorder: cannot start %s without a resource: %w", id, ErrInvalidTransition)
		}

		before := event.Snapshot(wo)
		updates := map[string]interface{}{
			"status":  models.StatusActive,
			"version": wo.Version + 1,
		}
		if wo.StartedAt == nil {
			now := time.Now()
			updates["started_by"] = actorID
			updates["started_at"] = now
			wo.StartedBy = actorID
			wo.StartedAt = &now
		}
		if err := casUpdate(tx, wo, updates); err != nil {
			return err
		}

		updated = *wo
		if _, err := job.Refresh(tx, wo.JobID); err != nil {
			return err
		}

		return appendStatusEvent(tx, &updated, actorID, before, "")
	})

	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Pause transitions an active work order to paused, closing the current
// time-tracking interval. Completed quantity is untouched; quantity is
// only recorded at completion.
func Pause(db *gorm.DB, id, actorID string) (*models.WorkOrder, error) {
	var updated models.WorkOrder

	err := db.Transaction(func(tx *gorm.DB) error {
		wo, err := Get(tx, id)
		if err != nil {
			return err
		}
		if wo.Status != models.StatusActive {
			return fmt.Errorf("workorder: cannot pause %s from %q: %w", id, wo.Status, ErrInvalidTransition)
		}

		before := event.Snapshot(wo)
		if err := casUpdate(tx, wo, map[string]interface{}{
			"status":  models.StatusPaused,
			"version": wo.Version + 1,
		}); err != nil {
			return err
		}

		updated = *wo
		if _, err := job.Refresh(tx, wo.JobID); err != nil {
			return err
		}

		return appendStatusEvent(tx, &updated, actorID, before, "")
	})

	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CompleteResult reports the outcome of a Complete call.
type CompleteResult struct {
	Order     *models.WorkOrder
	Remainder *models.WorkOrder // non-nil when the delivery was partial
}

// Complete closes the current session of an active or paused work order
// with the quantity delivered in that session. Delivering the full
// remaining quantity completes the order; delivering less marks it
// partial and atomically creates a queued, unassigned remainder order
// for the same job. The partial transition and the remainder creation
// share a correlation ID so the ledger records them as a causal pair.
func Complete(db *gorm.DB, id, actorID string, delivered int) (*CompleteResult, error) {
	var result CompleteResult

	err := db.Transaction(func(tx *gorm.DB) error {
		wo, err := Get(tx, id)
		if err != nil {
			return err
		}
		if wo.Status != models.StatusActive && wo.Status != models.StatusPaused {
			return fmt.Errorf("workorder: cannot complete %s from %q: %w", id, wo.Status, ErrInvalidTransition)
		}
		if delivered <= 0 {
			return fmt.Errorf("workorder: delivered quantity must be positive, got %d: %w", delivered, ErrInvalidQuantity)
		}
		newCompleted := wo.CompletedQty + delivered
		if newCompleted > wo.TargetQty {
			return fmt.Errorf("workorder: delivered %d exceeds remaining %d on %s: %w",
				delivered, wo.Remaining(), id, ErrInvalidQuantity)
		}

		before := event.Snapshot(wo)
		now := time.Now()
		status := models.StatusPartial
		if newCompleted == wo.TargetQty {
			status = models.StatusCompleted
		}

		if err := casUpdate(tx, wo, map[string]interface{}{
			"status":        status,
			"completed_qty": newCompleted,
			"completed_by":  actorID,
			"completed_at":  now,
			"version":       wo.Version + 1,
		}); err != nil {
			return err
		}
		wo.CompletedQty = newCompleted
		wo.CompletedBy = actorID
		wo.CompletedAt = &now

		if err := queue.Remove(tx, wo.ID); err != nil {
			return err
		}

		correlationID := ""
		if status == models.StatusPartial {
			correlationID, err = event.NewCorrelationID()
			if err != nil {
				return err
			}
			remainder, err := createRemainder(tx, wo, actorID, correlationID)
			if err != nil {
				return err
			}
			result.Remainder = remainder
		}

		result.Order = wo
		if _, err := job.Refresh(tx, wo.JobID); err != nil {
			return err
		}

		return appendStatusEvent(tx, wo, actorID, before, correlationID)
	})

	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Unassign deletes a queued, active or paused work order along with its
// queue entry. Terminal orders are part of the historical record and
// cannot be removed.
func Unassign(db *gorm.DB, id, actorID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		wo, err := Get(tx, id)
		if err != nil {
			return err
		}
		if wo.Terminal() {
			return fmt.Errorf("workorder: cannot unassign %s in terminal state %q: %w", id, wo.Status, ErrInvalidTransition)
		}

		before := event.Snapshot(wo)
		res := tx.Where("id = ? AND version = ?", id, wo.Version).Delete(&models.WorkOrder{})
		if res.Error != nil {
			return fmt.Errorf("workorder: delete %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("workorder: %s changed concurrently: %w", id, ErrConcurrentModification)
		}

		if err := queue.Remove(tx, id); err != nil {
			return err
		}
		if wo.JobID != "" {
			if _, err := job.Refresh(tx, wo.JobID); err != nil {
				return err
			}
		}

		return event.Append(tx, &models.ChangeEvent{
			Kind:          models.EventWorkOrderDeleted,
			WorkOrderID:   &wo.ID,
			JobID:         wo.JobID,
			ResourceID:    wo.ResourceID,
			ActorID:       actorID,
			Before:        before,
			SourceVersion: wo.Version,
		})
	})
}

// casUpdate applies a compare-and-set update against the order's
// current version. Zero rows affected means another transition won the
// race; the caller must re-read before retrying. On success wo's
// Status and Version are refreshed from the update map.
func casUpdate(tx *gorm.DB, wo *models.WorkOrder, updates map[string]interface{}) error {
	res := tx.Model(&models.WorkOrder{}).
		Where("id = ? AND version = ?", wo.ID, wo.Version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("workorder: update %s: %w", wo.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("workorder: %s changed concurrently: %w", wo.ID, ErrConcurrentModification)
	}
	if s, ok := updates["status"].(string); ok {
		wo.Status = s
	}
	if v, ok := updates["version"].(int); ok {
		wo.Version = v
	}
	return nil
}

// createRemainder creates the queued, unassigned remainder order for a
// partially completed original. The remainder's estimate is recomputed
// from the original resource's current rate when one is known.
func createRemainder(tx *gorm.DB, origin *models.WorkOrder, actorID, correlationID string) (*models.WorkOrder, error) {
	id, err := generateUniqueID(tx)
	if err != nil {
		return nil, err
	}

	duration := 0
	if origin.ResourceID != nil {
		var res models.Resource
		if err := tx.Where("id = ?", *origin.ResourceID).First(&res).Error; err == nil && res.UnitsPerHour > 0 {
			duration, _ = EstimatedDuration(res.SetupMinutes, origin.Remaining(), res.UnitsPerHour)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workorder: get resource for remainder: %w", err)
		}
	}

	remainder := models.WorkOrder{
		ID:                   id,
		JobID:                origin.JobID,
		Kind:                 origin.Kind,
		Status:               models.StatusQueued,
		TargetQty:            origin.Remaining(),
		EstimatedDurationMin: duration,
		OriginID:             &origin.ID,
		Version:              1,
	}
	if err := tx.Create(&remainder).Error; err != nil {
		return nil, fmt.Errorf("workorder: create remainder for %s: %w", origin.ID, err)
	}

	if err := event.Append(tx, &models.ChangeEvent{
		Kind:          models.EventWorkOrderCreated,
		WorkOrderID:   &remainder.ID,
		JobID:         remainder.JobID,
		ActorID:       actorID,
		After:         event.Snapshot(&remainder),
		CorrelationID: correlationID,
		SourceVersion: remainder.Version,
	}); err != nil {
		return nil, err
	}

	return &remainder, nil
}

// appendStatusEvent emits the change event for a status transition.
func appendStatusEvent(tx *gorm.DB, wo *models.WorkOrder, actorID, before, correlationID string) error {
	return event.Append(tx, &models.ChangeEvent{
		Kind:          models.EventWorkOrderStatus,
		WorkOrderID:   &wo.ID,
		JobID:         wo.JobID,
		ResourceID:    wo.ResourceID,
		ActorID:       actorID,
		Before:        before,
		After:         event.Snapshot(wo),
		CorrelationID: correlationID,
		SourceVersion: wo.Version,
	})
}
