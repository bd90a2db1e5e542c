package models

import "time"

// ScheduleViewEntry is the read-optimized projection of one
// resource-assigned work order, maintained exclusively by the
// synchronizer in internal/schedview. SourceVersion is the work order
// version the entry was derived from; writes carrying an older version
// are discarded.
type ScheduleViewEntry struct {
	WorkOrderID   string `gorm:"primaryKey;size:32"`
	ResourceID    string `gorm:"size:32;index"`
	ResourceName  string `gorm:"size:255"`
	JobID         string `gorm:"size:32;index"`
	Kind          string `gorm:"size:16"`
	Status        string `gorm:"size:16"`
	TargetQty     int
	CompletedQty  int
	StartAt       time.Time `gorm:"index"`
	EndAt         time.Time
	SourceVersion int `gorm:"not null"`
	SyncedAt      time.Time
}
