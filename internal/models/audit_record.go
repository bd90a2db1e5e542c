package models

import "time"

// AuditRecord is one immutable fact in the append-only ledger. Records
// are only ever created; the autoincrement ID doubles as a strictly
// increasing sequence so readers can reconstruct causal order, and
// causally paired records (a partial completion and its remainder
// creation) share a CorrelationID. EventID is the originating change
// event; its uniqueness makes ledger writes replay-safe.
type AuditRecord struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	EventID       uint   `gorm:"uniqueIndex"`
	ActorID       string `gorm:"size:64;not null"`
	Action        string `gorm:"size:32;not null;index"`
	JobID         string `gorm:"size:32;index"`
	WorkOrderID   *string `gorm:"size:32;index"`
	Before        string `gorm:"type:text"`
	After         string `gorm:"type:text"`
	CorrelationID string `gorm:"size:32;index"`
	CreatedAt     time.Time
}
