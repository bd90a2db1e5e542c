package models

import "time"

// QueueEntry orders queued and active work orders on a resource.
// Position is insertion order, not priority; entries with equal
// positions are ordered by CreatedAt.
type QueueEntry struct {
	ResourceID  string `gorm:"primaryKey;size:32"`
	WorkOrderID string `gorm:"primaryKey;size:32"`
	Position    int    `gorm:"not null;index"`
	CreatedAt   time.Time

	Resource  Resource  `gorm:"foreignKey:ResourceID"`
	WorkOrder WorkOrder `gorm:"foreignKey:WorkOrderID"`
}
