// Package schedview keeps the denormalized schedule view eventually
// consistent with the authoritative work order records. Every entry is
// re-derived in full from current source state (never patched from a
// stale copy) and guarded by the source work order's version, so
// at-least-once and out-of-order event delivery converge on the newest
// data.
package schedview

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/zulandar/shopline/internal/downtime"
	"github.com/zulandar/shopline/internal/models"
	"github.com/zulandar/shopline/internal/workorder"
	"gorm.io/gorm"
)

// Project re-derives the view entry for one work order. Orders without
// a resource have no view entry; projecting one removes any stale
// entry left by a prior assignment. A write is discarded when the view
// already reflects an equal-or-newer source version (last-writer-wins
// by source version, not arrival order).
func Project(db *gorm.DB, wo *models.WorkOrder, now time.Time) error {
	if wo.ResourceID == nil {
		return removeEntry(db, wo.ID)
	}

	var res models.Resource
	if err := db.Where("id = ?", *wo.ResourceID).First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("schedview: resource %s for %s: %w", *wo.ResourceID, wo.ID, workorder.ErrReferenceNotFound)
		}
		return fmt.Errorf("schedview: get resource %s: %w", *wo.ResourceID, err)
	}

	start, end := downtime.EffectiveWindow(wo, &res, now)
	entry := models.ScheduleViewEntry{
		WorkOrderID:   wo.ID,
		ResourceID:    res.ID,
		ResourceName:  res.Name,
		JobID:         wo.JobID,
		Kind:          wo.Kind,
		Status:        wo.Status,
		TargetQty:     wo.TargetQty,
		CompletedQty:  wo.CompletedQty,
		StartAt:       start,
		EndAt:         end,
		SourceVersion: wo.Version,
		SyncedAt:      now,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.ScheduleViewEntry
		err := tx.Where("work_order_id = ?", wo.ID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("schedview: create entry %s: %w", wo.ID, err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("schedview: get entry %s: %w", wo.ID, err)
		}

		if existing.SourceVersion > wo.Version {
			// Stale event; the view already reflects newer source state.
			return nil
		}
		if err := tx.Model(&models.ScheduleViewEntry{}).
			Where("work_order_id = ?", wo.ID).
			Select("*").Omit("work_order_id").Updates(&entry).Error; err != nil {
			return fmt.Errorf("schedview: update entry %s: %w", wo.ID, err)
		}
		return nil
	})
}

// Apply processes one change event against the view.
func Apply(db *gorm.DB, ev *models.ChangeEvent, now time.Time) error {
	switch ev.Kind {
	case models.EventWorkOrderDeleted:
		if ev.WorkOrderID == nil {
			return nil
		}
		return removeEntry(db, *ev.WorkOrderID)

	case models.EventWorkOrderCreated, models.EventWorkOrderStatus:
		if ev.WorkOrderID == nil {
			return nil
		}
		wo, err := workorder.Get(db, *ev.WorkOrderID)
		if err != nil {
			if errors.Is(err, workorder.ErrReferenceNotFound) {
				// Order deleted after this event was written.
				return removeEntry(db, *ev.WorkOrderID)
			}
			return err
		}
		return Project(db, wo, now)

	case models.EventDowntimeReported, models.EventDowntimeCleared, models.EventResourceRenamed:
		if ev.ResourceID == nil {
			return nil
		}
		return projectResource(db, *ev.ResourceID, now)
	}
	return nil
}

// projectResource re-derives every view entry on a resource, picking up
// name changes and downtime pushes.
func projectResource(db *gorm.DB, resourceID string, now time.Time) error {
	orders, err := workorder.List(db, workorder.ListFilters{ResourceID: resourceID})
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].Terminal() {
			continue
		}
		if err := Project(db, &orders[i], now); err != nil {
			return err
		}
	}
	return nil
}

// Query returns view entries filtered by resource and date range,
// sorted by effective start time. Entries on a currently-down resource
// get the live push applied at read time, keeping the continuous-push
// semantics without a write storm on every read.
func Query(db *gorm.DB, resourceID string, from, to *time.Time, now time.Time) ([]models.ScheduleViewEntry, error) {
	q := db.Model(&models.ScheduleViewEntry{})
	if resourceID != "" {
		q = q.Where("resource_id = ?", resourceID)
	}

	var entries []models.ScheduleViewEntry
	if err := q.Order("start_at ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("schedview: query: %w", err)
	}

	// Apply the live delta for down resources before range filtering.
	var down []models.Resource
	if err := db.Where("is_down = ?", true).Find(&down).Error; err != nil {
		return nil, fmt.Errorf("schedview: down resources: %w", err)
	}
	if len(down) > 0 {
		delta := make(map[string]time.Duration, len(down))
		for i := range down {
			if down[i].DownSince != nil {
				delta[down[i].ID] = now.Sub(*down[i].DownSince)
			}
		}
		for i := range entries {
			if d, ok := delta[entries[i].ResourceID]; ok {
				entries[i].StartAt = entries[i].StartAt.Add(d)
				entries[i].EndAt = entries[i].EndAt.Add(d)
			}
		}
	}

	filtered := entries[:0]
	for _, e := range entries {
		if from != nil && e.EndAt.Before(*from) {
			continue
		}
		if to != nil && e.StartAt.After(*to) {
			continue
		}
		filtered = append(filtered, e)
	}

	// Re-sort: live deltas can reorder entries across resources.
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].StartAt.Equal(filtered[j].StartAt) {
			return filtered[i].StartAt.Before(filtered[j].StartAt)
		}
		return filtered[i].WorkOrderID < filtered[j].WorkOrderID
	})
	return filtered, nil
}

// removeEntry deletes the view entry for a work order, if any.
func removeEntry(db *gorm.DB, workOrderID string) error {
	if err := db.Where("work_order_id = ?", workOrderID).Delete(&models.ScheduleViewEntry{}).Error; err != nil {
		return fmt.Errorf("schedview: remove entry %s: %w", workOrderID, err)
	}
	return nil
}
