// Package downtime manages per-resource down/up state and the
// continuous timeline push it applies. The push is never baked into
// stored schedules: readers compute the effective window from the
// resource's accumulated shift plus the live delta while it is down,
// and clearing downtime folds the live delta into the accumulated
// shift so the schedule freezes at its last computed value.
package downtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/shopline/internal/event"
	"github.com/zulandar/shopline/internal/models"
	"github.com/zulandar/shopline/internal/workorder"
	"gorm.io/gorm"
)

// Report marks a resource down and opens a reported downtime work order
// on its timeline. Reporting an already-down resource is resolved
// last-writer-wins on the flag (the original DownSince is kept so the
// push stays continuous), but the attempt is still captured as a
// change event for the ledger.
func Report(db *gorm.DB, resourceID, reason, actorID string) (*models.Resource, error) {
	var updated models.Resource

	err := db.Transaction(func(tx *gorm.DB) error {
		res, err := getResource(tx, resourceID)
		if err != nil {
			return err
		}

		before := event.Snapshot(res)
		now := time.Now()
		updates := map[string]interface{}{
			"is_down":     true,
			"down_reason": reason,
			"version":     res.Version + 1,
		}
		if !res.IsDown {
			updates["down_since"] = now
		}
		if err := casResource(tx, res, updates); err != nil {
			return err
		}
		res.IsDown = true
		res.DownReason = reason
		if res.DownSince == nil {
			res.DownSince = &now
		}

		if err := openReportedOrder(tx, res, reason, now); err != nil {
			return err
		}

		updated = *res
		return event.Append(tx, &models.ChangeEvent{
			Kind:          models.EventDowntimeReported,
			ResourceID:    &res.ID,
			ActorID:       actorID,
			Before:        before,
			After:         event.Snapshot(res),
			SourceVersion: res.Version,
		})
	})

	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Clear marks a resource up again. The live push accumulated since the
// downtime began is folded into ShiftedMin, freezing every affected
// work order's effective schedule at its last computed value. Clearing
// an already-up resource is a no-op on state but still audited.
func Clear(db *gorm.DB, resourceID, actorID string) (*models.Resource, error) {
	var updated models.Resource

	err := db.Transaction(func(tx *gorm.DB) error {
		res, err := getResource(tx, resourceID)
		if err != nil {
			return err
		}

		before := event.Snapshot(res)
		now := time.Now()
		updates := map[string]interface{}{
			"is_down":     false,
			"down_since":  nil,
			"down_reason": "",
			"version":     res.Version + 1,
		}
		elapsed := 0
		if res.IsDown && res.DownSince != nil {
			elapsed = int(now.Sub(*res.DownSince).Round(time.Minute) / time.Minute)
			updates["shifted_min"] = res.ShiftedMin + elapsed
		}
		if err := casResource(tx, res, updates); err != nil {
			return err
		}
		res.IsDown = false
		res.DownSince = nil
		res.DownReason = ""
		res.ShiftedMin += elapsed

		if err := closeReportedOrder(tx, res.ID, elapsed, actorID, now); err != nil {
			return err
		}

		updated = *res
		return event.Append(tx, &models.ChangeEvent{
			Kind:          models.EventDowntimeCleared,
			ResourceID:    &res.ID,
			ActorID:       actorID,
			Before:        before,
			After:         event.Snapshot(res),
			SourceVersion: res.Version,
		})
	})

	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// EffectiveShift returns the total timeline push for a resource at the
// given instant: the frozen accumulated shift plus, while the resource
// is down, the still-growing delta since DownSince.
func EffectiveShift(res *models.Resource, now time.Time) time.Duration {
	shift := time.Duration(res.ShiftedMin) * time.Minute
	if res.IsDown && res.DownSince != nil {
		shift += now.Sub(*res.DownSince)
	}
	return shift
}

// EffectiveWindow computes a work order's effective start and end at
// the given instant. The base schedule is ScheduledStart when set,
// otherwise the order's creation time.
func EffectiveWindow(wo *models.WorkOrder, res *models.Resource, now time.Time) (time.Time, time.Time) {
	base := wo.CreatedAt
	if wo.ScheduledStart != nil {
		base = *wo.ScheduledStart
	}
	start := base
	if res != nil {
		start = base.Add(EffectiveShift(res, now))
	}
	return start, start.Add(time.Duration(wo.EstimatedDurationMin) * time.Minute)
}

// getResource loads a resource row for update.
func getResource(tx *gorm.DB, id string) (*models.Resource, error) {
	var res models.Resource
	if err := tx.Where("id = ?", id).First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("downtime: resource %s: %w", id, workorder.ErrReferenceNotFound)
		}
		return nil, fmt.Errorf("downtime: get resource %s: %w", id, err)
	}
	return &res, nil
}

// casResource applies a compare-and-set update on the resource row.
func casResource(tx *gorm.DB, res *models.Resource, updates map[string]interface{}) error {
	r := tx.Model(&models.Resource{}).
		Where("id = ? AND version = ?", res.ID, res.Version).
		Updates(updates)
	if r.Error != nil {
		return fmt.Errorf("downtime: update resource %s: %w", res.ID, r.Error)
	}
	if r.RowsAffected == 0 {
		return fmt.Errorf("downtime: resource %s changed concurrently: %w", res.ID, workorder.ErrConcurrentModification)
	}
	if v, ok := updates["version"].(int); ok {
		res.Version = v
	}
	return nil
}

// openReportedOrder creates the downtime-kind work order occupying the
// resource's timeline for an operator-reported outage. If one is
// already open (double report) it is left as is.
func openReportedOrder(tx *gorm.DB, res *models.Resource, reason string, now time.Time) error {
	var count int64
	err := tx.Model(&models.WorkOrder{}).
		Where("resource_id = ? AND kind = ? AND provenance = ? AND status = ?",
			res.ID, models.KindDowntime, models.ProvenanceReported, models.StatusActive).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("downtime: check open order for %s: %w", res.ID, err)
	}
	if count > 0 {
		return nil
	}

	id, err := workorder.GenerateID()
	if err != nil {
		return err
	}
	wo := models.WorkOrder{
		ID:             id,
		ResourceID:     &res.ID,
		Kind:           models.KindDowntime,
		Status:         models.StatusActive,
		Provenance:     models.ProvenanceReported,
		ScheduledStart: &now,
		StartedBy:      "downtime",
		StartedAt:      &now,
		Version:        1,
	}
	if err := tx.Create(&wo).Error; err != nil {
		return fmt.Errorf("downtime: create reported order for %s: %w", res.ID, err)
	}
	return event.Append(tx, &models.ChangeEvent{
		Kind:          models.EventWorkOrderCreated,
		WorkOrderID:   &wo.ID,
		ResourceID:    &res.ID,
		ActorID:       "downtime",
		After:         event.Snapshot(&wo),
		SourceVersion: wo.Version,
	})
}

// closeReportedOrder completes the open reported downtime order, fixing
// its duration to the observed outage length.
func closeReportedOrder(tx *gorm.DB, resourceID string, elapsedMin int, actorID string, now time.Time) error {
	var wo models.WorkOrder
	err := tx.Where("resource_id = ? AND kind = ? AND provenance = ? AND status = ?",
		resourceID, models.KindDowntime, models.ProvenanceReported, models.StatusActive).
		First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("downtime: find open order for %s: %w", resourceID, err)
	}

	updates := map[string]interface{}{
		"status":                 models.StatusCompleted,
		"estimated_duration_min": elapsedMin,
		"completed_by":           actorID,
		"completed_at":           now,
		"version":                wo.Version + 1,
	}
	r := tx.Model(&models.WorkOrder{}).
		Where("id = ? AND version = ?", wo.ID, wo.Version).
		Updates(updates)
	if r.Error != nil {
		return fmt.Errorf("downtime: close order %s: %w", wo.ID, r.Error)
	}
	if r.RowsAffected == 0 {
		return fmt.Errorf("downtime: order %s changed concurrently: %w", wo.ID, workorder.ErrConcurrentModification)
	}
	wo.Status = models.StatusCompleted
	wo.Version++
	return event.Append(tx, &models.ChangeEvent{
		Kind:          models.EventWorkOrderStatus,
		WorkOrderID:   &wo.ID,
		ResourceID:    &resourceID,
		ActorID:       actorID,
		After:         event.Snapshot(&wo),
		SourceVersion: wo.Version,
	})
}
