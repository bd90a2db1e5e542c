// Package event provides the change-event outbox. Every write path
// appends its events in the same transaction as the mutation they
// describe; consumers poll by ascending ID.
package event

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zulandar/shopline/internal/models"
	"gorm.io/gorm"
)

// NewCorrelationID creates a random correlation ID shared by causally
// linked events (e.g. a partial completion and its remainder creation).
func NewCorrelationID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("event: generate correlation ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Snapshot marshals a value to a JSON string for before/after fields.
// Returns the empty string for nil.
func Snapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// Append writes a change event within the caller's transaction.
func Append(tx *gorm.DB, ev *models.ChangeEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	if err := tx.Create(ev).Error; err != nil {
		return fmt.Errorf("event: append %s: %w", ev.Kind, err)
	}
	return nil
}

// LastID returns the newest event ID, or zero when the outbox is empty.
func LastID(db *gorm.DB) (uint, error) {
	var last uint
	err := db.Model(&models.ChangeEvent{}).
		Select("COALESCE(MAX(id), 0)").Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("event: last id: %w", err)
	}
	return last, nil
}

// After returns up to limit events with ID greater than cursor, in
// ascending ID order.
func After(db *gorm.DB, cursor uint, limit int) ([]models.ChangeEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var evs []models.ChangeEvent
	if err := db.Where("id > ?", cursor).Order("id ASC").Limit(limit).Find(&evs).Error; err != nil {
		return nil, fmt.Errorf("event: after %d: %w", cursor, err)
	}
	return evs, nil
}
