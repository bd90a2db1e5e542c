package models

import "time"

// Job statuses derived from the job's work orders.
const (
	JobUnassigned = "unassigned"
	JobAssigned   = "assigned"
	JobInProgress = "in_progress"
	JobFinished   = "finished"
)

// Job is a coarse aggregate over the work orders belonging to it.
// CachedStatus is a denormalized copy of the derived status; the
// derivation in internal/job is authoritative.
type Job struct {
	ID           string `gorm:"primaryKey;size:32"`
	Name         string `gorm:"not null"`
	CachedStatus string `gorm:"size:16;default:unassigned;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	WorkOrders []WorkOrder `gorm:"foreignKey:JobID"`
}
