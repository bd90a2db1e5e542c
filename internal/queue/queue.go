// Package queue manages per-resource ordered queues of work orders.
// Positions record insertion order, not priority; equal positions are
// disambiguated by creation time so ordering stays deterministic under
// concurrent assignment.
package queue

import (
	"fmt"
	"time"

	"github.com/zulandar/shopline/internal/models"
	"gorm.io/gorm"
)

// NextPosition returns the position for the next entry on a resource.
func NextPosition(tx *gorm.DB, resourceID string) (int, error) {
	var max int
	err := tx.Model(&models.QueueEntry{}).
		Where("resource_id = ?", resourceID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("queue: next position for %s: %w", resourceID, err)
	}
	return max + 1, nil
}

// Add appends a work order to the tail of a resource's queue.
func Add(tx *gorm.DB, resourceID, workOrderID string) (*models.QueueEntry, error) {
	pos, err := NextPosition(tx, resourceID)
	if err != nil {
		return nil, err
	}
	entry := models.QueueEntry{
		ResourceID:  resourceID,
		WorkOrderID: workOrderID,
		Position:    pos,
		CreatedAt:   time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("queue: add %s to %s: %w", workOrderID, resourceID, err)
	}
	return &entry, nil
}

// Remove deletes the queue entry for a work order, if any.
func Remove(tx *gorm.DB, workOrderID string) error {
	if err := tx.Where("work_order_id = ?", workOrderID).Delete(&models.QueueEntry{}).Error; err != nil {
		return fmt.Errorf("queue: remove %s: %w", workOrderID, err)
	}
	return nil
}

// Entries returns a resource's queue in order.
func Entries(db *gorm.DB, resourceID string) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := db.Where("resource_id = ?", resourceID).
		Order("position ASC, created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("queue: entries for %s: %w", resourceID, err)
	}
	return entries, nil
}
