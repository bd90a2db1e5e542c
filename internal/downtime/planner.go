package downtime

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/shopline/internal/config"
	"github.com/zulandar/shopline/internal/event"
	"github.com/zulandar/shopline/internal/models"
	"github.com/zulandar/shopline/internal/workorder"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ExpandPlanned materializes configured downtime windows as planned
// downtime work orders within [now, now+horizon). Expansion is
// idempotent: a window occurrence already materialized for the same
// resource and start time is skipped, so the pass can run on every
// tick. Planned windows occupy the timeline but do not toggle the
// resource's down flag; the continuous push applies only to reported
// downtime.
func ExpandPlanned(db *gorm.DB, windows []config.DowntimeWindow, now time.Time, horizon time.Duration) (int, error) {
	created := 0
	for _, w := range windows {
		sched, err := cronParser.Parse(w.Cron)
		if err != nil {
			return created, fmt.Errorf("downtime: parse cron %q: %w", w.Cron, err)
		}

		for t := sched.Next(now); !t.IsZero() && t.Before(now.Add(horizon)); t = sched.Next(t) {
			ok, err := materializeWindow(db, w, t)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

// materializeWindow creates one planned downtime order unless it
// already exists. Returns true when a new order was created.
func materializeWindow(db *gorm.DB, w config.DowntimeWindow, start time.Time) (bool, error) {
	createdNew := false

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.WorkOrder{}).
			Where("resource_id = ? AND kind = ? AND provenance = ? AND scheduled_start = ?",
				w.ResourceID, models.KindDowntime, models.ProvenancePlanned, start).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("downtime: check window for %s: %w", w.ResourceID, err)
		}
		if count > 0 {
			return nil
		}

		id, err := workorder.GenerateID()
		if err != nil {
			return err
		}
		wo := models.WorkOrder{
			ID:                   id,
			ResourceID:           &w.ResourceID,
			Kind:                 models.KindDowntime,
			Status:               models.StatusQueued,
			Provenance:           models.ProvenancePlanned,
			EstimatedDurationMin: w.Minutes,
			ScheduledStart:       &start,
			Version:              1,
		}
		if err := tx.Create(&wo).Error; err != nil {
			return fmt.Errorf("downtime: create planned order for %s: %w", w.ResourceID, err)
		}
		createdNew = true

		return event.Append(tx, &models.ChangeEvent{
			Kind:          models.EventWorkOrderCreated,
			WorkOrderID:   &wo.ID,
			ResourceID:    &w.ResourceID,
			ActorID:       "planner",
			After:         event.Snapshot(&wo),
			SourceVersion: wo.Version,
		})
	})

	return createdNew, err
}
