// Package audit maintains the append-only ledger of state-changing
// actions. Records are written by the changefeed consumer, keyed by
// the originating change event so replays never duplicate entries, and
// are never updated or deleted once written. A secondary index by job
// ID serves per-job history without a second copy of the data.
package audit

import (
	"fmt"
	"time"

	"github.com/zulandar/shopline/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// actionForKind maps change event kinds to ledger action names.
var actionForKind = map[string]string{
	models.EventWorkOrderCreated: "work_order.created",
	models.EventWorkOrderStatus:  "work_order.transition",
	models.EventWorkOrderDeleted: "work_order.unassigned",
	models.EventDowntimeReported: "downtime.reported",
	models.EventDowntimeCleared:  "downtime.cleared",
	models.EventResourceRenamed:  "resource.renamed",
}

// RecordEvent appends the ledger entry for a change event. Idempotent:
// a record already written for the same event is left untouched.
func RecordEvent(db *gorm.DB, ev *models.ChangeEvent) error {
	action, ok := actionForKind[ev.Kind]
	if !ok {
		action = ev.Kind
	}

	rec := models.AuditRecord{
		EventID:       ev.ID,
		ActorID:       ev.ActorID,
		Action:        action,
		JobID:         ev.JobID,
		WorkOrderID:   ev.WorkOrderID,
		Before:        ev.Before,
		After:         ev.After,
		CorrelationID: ev.CorrelationID,
		CreatedAt:     time.Now(),
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("audit: record event %d: %w", ev.ID, err)
	}
	return nil
}

// ByJob returns a job's ledger entries in causal (sequence) order.
func ByJob(db *gorm.DB, jobID string) ([]models.AuditRecord, error) {
	var recs []models.AuditRecord
	if err := db.Where("job_id = ?", jobID).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("audit: by job %s: %w", jobID, err)
	}
	return recs, nil
}

// ByWorkOrder returns a work order's ledger entries in causal order.
func ByWorkOrder(db *gorm.DB, workOrderID string) ([]models.AuditRecord, error) {
	var recs []models.AuditRecord
	if err := db.Where("work_order_id = ?", workOrderID).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("audit: by work order %s: %w", workOrderID, err)
	}
	return recs, nil
}

// LastEventID returns the newest change event already in the ledger,
// used by the consumer to restore its cursor on startup.
func LastEventID(db *gorm.DB) (uint, error) {
	var last uint
	err := db.Model(&models.AuditRecord{}).
		Select("COALESCE(MAX(event_id), 0)").Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("audit: last event id: %w", err)
	}
	return last, nil
}
