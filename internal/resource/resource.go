// Package resource provides machine/workstation record operations.
package resource

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zulandar/shopline/internal/event"
	"github.com/zulandar/shopline/internal/models"
	"github.com/zulandar/shopline/internal/workorder"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for registering a resource.
type CreateOpts struct {
	Name         string
	SetupMinutes int
	UnitsPerHour int
}

// GenerateID creates a unique resource ID in res-xxxxx format (5-char hex).
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("resource: generate ID: %w", err)
	}
	return "res-" + hex.EncodeToString(b)[:5], nil
}

// Create registers a new resource.
func Create(db *gorm.DB, opts CreateOpts) (*models.Resource, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("resource: name is required")
	}

	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	res := models.Resource{
		ID:           id,
		Name:         opts.Name,
		SetupMinutes: opts.SetupMinutes,
		UnitsPerHour: opts.UnitsPerHour,
		Version:      1,
	}
	if err := db.Create(&res).Error; err != nil {
		return nil, fmt.Errorf("resource: create: %w", err)
	}
	return &res, nil
}

// Get retrieves a resource by ID.
func Get(db *gorm.DB, id string) (*models.Resource, error) {
	var res models.Resource
	if err := db.Where("id = ?", id).First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resource: %s: %w", id, workorder.ErrReferenceNotFound)
		}
		return nil, fmt.Errorf("resource: get %s: %w", id, err)
	}
	return &res, nil
}

// List returns all resources, oldest first.
func List(db *gorm.DB) ([]models.Resource, error) {
	var resources []models.Resource
	if err := db.Order("created_at ASC, id ASC").Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("resource: list: %w", err)
	}
	return resources, nil
}

// Rename changes a resource's display name and emits the change event
// so the schedule view re-derives the denormalized name.
func Rename(db *gorm.DB, id, name, actorID string) (*models.Resource, error) {
	if name == "" {
		return nil, fmt.Errorf("resource: name is required")
	}

	var updated models.Resource
	err := db.Transaction(func(tx *gorm.DB) error {
		res, err := Get(tx, id)
		if err != nil {
			return err
		}

		before := event.Snapshot(res)
		r := tx.Model(&models.Resource{}).
			Where("id = ? AND version = ?", res.ID, res.Version).
			Updates(map[string]interface{}{"name": name, "version": res.Version + 1})
		if r.Error != nil {
			return fmt.Errorf("resource: rename %s: %w", id, r.Error)
		}
		if r.RowsAffected == 0 {
			return fmt.Errorf("resource: %s changed concurrently: %w", id, workorder.ErrConcurrentModification)
		}
		res.Name = name
		res.Version++
		updated = *res

		return event.Append(tx, &models.ChangeEvent{
			Kind:          models.EventResourceRenamed,
			ResourceID:    &res.ID,
			ActorID:       actorID,
			Before:        before,
			After:         event.Snapshot(res),
			SourceVersion: res.Version,
		})
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
