package downtime

import (
	"testing"
	"time"

	"github.com/zulandar/shopline/internal/config"
	"github.com/zulandar/shopline/internal/models"
)

func TestExpandPlanned(t *testing.T) {
	db := testDB(t)
	resourceID := seedResource(t, db)

	windows := []config.DowntimeWindow{
		{ResourceID: resourceID, Cron: "0 2 * * *", Minutes: 60, Reason: "nightly maintenance"},
	}
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	created, err := ExpandPlanned(db, windows, now, 72*time.Hour)
	if err != nil {
		t.Fatalf("ExpandPlanned() error: %v", err)
	}
	if created != 3 {
		t.Errorf("created = %d, want 3 (one per day in horizon)", created)
	}

	var orders []models.WorkOrder
	if err := db.Where("kind = ? AND provenance = ?", models.KindDowntime, models.ProvenancePlanned).
		Order("scheduled_start ASC").Find(&orders).Error; err != nil {
		t.Fatalf("find orders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("orders = %d, want 3", len(orders))
	}
	for i, wo := range orders {
		if wo.Status != models.StatusQueued {
			t.Errorf("order %d status = %q, want queued", i, wo.Status)
		}
		if wo.EstimatedDurationMin != 60 {
			t.Errorf("order %d duration = %d, want 60", i, wo.EstimatedDurationMin)
		}
		want := time.Date(2026, 9, 1+i, 2, 0, 0, 0, time.UTC)
		if wo.ScheduledStart == nil || !wo.ScheduledStart.Equal(want) {
			t.Errorf("order %d start = %v, want %v", i, wo.ScheduledStart, want)
		}
	}

	// Planned windows never toggle the down flag.
	var res models.Resource
	db.First(&res, "id = ?", resourceID)
	if res.IsDown {
		t.Error("planned expansion marked resource down")
	}
}

func TestExpandPlanned_Idempotent(t *testing.T) {
	db := testDB(t)
	resourceID := seedResource(t, db)

	windows := []config.DowntimeWindow{
		{ResourceID: resourceID, Cron: "0 2 * * *", Minutes: 60, Reason: "nightly maintenance"},
	}
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	if _, err := ExpandPlanned(db, windows, now, 48*time.Hour); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	created, err := ExpandPlanned(db, windows, now, 48*time.Hour)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if created != 0 {
		t.Errorf("second pass created = %d, want 0", created)
	}

	// A sliding horizon only materializes the newly covered occurrences.
	created, err = ExpandPlanned(db, windows, now.Add(24*time.Hour), 48*time.Hour)
	if err != nil {
		t.Fatalf("slid pass: %v", err)
	}
	if created != 1 {
		t.Errorf("slid pass created = %d, want 1", created)
	}
}

func TestExpandPlanned_BadCron(t *testing.T) {
	db := testDB(t)
	resourceID := seedResource(t, db)

	windows := []config.DowntimeWindow{
		{ResourceID: resourceID, Cron: "not a cron", Minutes: 60},
	}
	if _, err := ExpandPlanned(db, windows, time.Now(), time.Hour); err == nil {
		t.Error("ExpandPlanned() with bad cron: want error, got nil")
	}
}
