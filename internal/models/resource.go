package models

import "time"

// Resource is a machine or workstation that work orders are assigned to.
// DownSince is non-nil exactly while IsDown is true. ShiftedMin
// accumulates the frozen timeline push from past downtime windows;
// readers compute the live push from (ShiftedMin, IsDown, DownSince).
type Resource struct {
	ID           string `gorm:"primaryKey;size:32"`
	Name         string `gorm:"not null"`
	SetupMinutes int    `gorm:"default:0"`
	UnitsPerHour int    `gorm:"default:0"`
	IsDown       bool   `gorm:"default:false;index"`
	DownSince    *time.Time
	DownReason   string `gorm:"size:255"`
	ShiftedMin   int    `gorm:"default:0"`
	Version      int    `gorm:"default:1;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
