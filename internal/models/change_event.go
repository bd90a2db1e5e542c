package models

import "time"

// Change event kinds emitted by write paths.
const (
	EventWorkOrderCreated  = "work_order_created"
	EventWorkOrderStatus   = "work_order_status"
	EventWorkOrderDeleted  = "work_order_deleted"
	EventDowntimeReported  = "downtime_reported"
	EventDowntimeCleared   = "downtime_cleared"
	EventResourceRenamed   = "resource_renamed"
)

// ChangeEvent is the outbox row appended in the same transaction as the
// mutation it describes. Consumers (the schedule view synchronizer, the
// audit ledger writer, outbound notifiers) poll by ascending ID, which
// also serves as the global sequence.
type ChangeEvent struct {
	ID            uint    `gorm:"primaryKey;autoIncrement"`
	Kind          string  `gorm:"size:32;not null;index"`
	WorkOrderID   *string `gorm:"size:32;index"`
	JobID         string  `gorm:"size:32;index"`
	ResourceID    *string `gorm:"size:32;index"`
	ActorID       string  `gorm:"size:64"`
	Before        string  `gorm:"type:text"`
	After         string  `gorm:"type:text"`
	CorrelationID string  `gorm:"size:32"`
	SourceVersion int     `gorm:"default:0"`
	CreatedAt     time.Time
}
