package models

import "time"

// Work order kinds.
const (
	KindProduction = "production"
	KindDowntime   = "downtime"
)

// Work order statuses.
const (
	StatusQueued    = "queued"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
)

// Downtime provenance values.
const (
	ProvenancePlanned  = "planned"
	ProvenanceReported = "reported"
)

// WorkOrder is the core unit of assignable work in Shopline.
type WorkOrder struct {
	ID                   string     `gorm:"primaryKey;size:32"`
	JobID                string     `gorm:"size:32;index"`
	ResourceID           *string    `gorm:"size:32;index"`
	Kind                 string     `gorm:"size:16;default:production"`
	Status               string     `gorm:"size:16;default:queued;index"`
	TargetQty            int        `gorm:"not null"`
	CompletedQty         int        `gorm:"default:0"`
	EstimatedDurationMin int        `gorm:"default:0"`
	Provenance           string     `gorm:"size:16"`
	OriginID             *string    `gorm:"size:32;index"`
	Version              int        `gorm:"default:1;not null"`
	ScheduledStart       *time.Time
	StartedBy            string `gorm:"size:64"`
	StartedAt            *time.Time
	CompletedBy          string `gorm:"size:64"`
	CompletedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Resource *Resource  `gorm:"foreignKey:ResourceID"`
	Origin   *WorkOrder `gorm:"foreignKey:OriginID"`
}

// Terminal reports whether the work order can accept no further transitions.
func (w *WorkOrder) Terminal() bool {
	return w.Status == StatusCompleted || w.Status == StatusPartial
}

// Remaining returns the undelivered quantity.
func (w *WorkOrder) Remaining() int {
	return w.TargetQty - w.CompletedQty
}
