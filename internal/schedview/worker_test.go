package schedview

import (
	"context"
	"io"
	"testing"

	"github.com/zulandar/shopline/internal/audit"
	"github.com/zulandar/shopline/internal/models"
	"github.com/zulandar/shopline/internal/workorder"
	"gorm.io/gorm"
)

func newWorker(db *gorm.DB) *Worker {
	return &Worker{DB: db, Out: io.Discard}
}

func TestWorker_DrainProjectsAndAudits(t *testing.T) {
	db := testDB(t)
	jobID, resourceID := seed(t, db)

	wo, err := workorder.Assign(db, workorder.AssignOpts{
		JobID: jobID, ResourceID: resourceID, ActorID: "scheduler", TargetQty: 100,
	})
	if err != nil {
		t.Fatalf("Assign() error: %v", err)
	}

	w := newWorker(db)
	n, err := w.drain(context.Background())
	if err != nil {
		t.Fatalf("drain() error: %v", err)
	}
	if n != 1 {
		t.Errorf("drained = %d, want 1", n)
	}

	// View projected.
	var entry models.ScheduleViewEntry
	if err := db.First(&entry, "work_order_id = ?", wo.ID).Error; err != nil {
		t.Fatalf("find view entry: %v", err)
	}
	if entry.Status != models.StatusQueued {
		t.Errorf("entry status = %q, want queued", entry.Status)
	}

	// Ledger written.
	recs, err := audit.ByJob(db, jobID)
	if err != nil {
		t.Fatalf("ByJob() error: %v", err)
	}
	if len(recs) != 1 || recs[0].Action != "work_order.created" {
		t.Errorf("ledger = %+v, want one work_order.created", recs)
	}
}

func TestWorker_ReplayIsIdempotent(t *testing.T) {
	db := testDB(t)
	jobID, resourceID := seed(t, db)

	if _, err := workorder.Assign(db, workorder.AssignOpts{
		JobID: jobID, ResourceID: resourceID, ActorID: "scheduler", TargetQty: 100,
	}); err != nil {
		t.Fatalf("Assign() error: %v", err)
	}

	w := newWorker(db)
	if _, err := w.drain(context.Background()); err != nil {
		t.Fatalf("drain() error: %v", err)
	}

	// A crashed consumer restarts from the audit cursor and replays;
	// the ledger must not grow.
	w.cursor = 0
	if _, err := w.drain(context.Background()); err != nil {
		t.Fatalf("replay drain() error: %v", err)
	}

	var recs int64
	db.Model(&models.AuditRecord{}).Count(&recs)
	if recs != 1 {
		t.Errorf("ledger records = %d after replay, want 1", recs)
	}
	var entries int64
	db.Model(&models.ScheduleViewEntry{}).Count(&entries)
	if entries != 1 {
		t.Errorf("view entries = %d after replay, want 1", entries)
	}
}

func TestWorker_CursorRestoresFromLedger(t *testing.T) {
	db := testDB(t)
	jobID, resourceID := seed(t, db)

	if _, err := workorder.Assign(db, workorder.AssignOpts{
		JobID: jobID, ResourceID: resourceID, ActorID: "scheduler", TargetQty: 100,
	}); err != nil {
		t.Fatalf("Assign() error: %v", err)
	}

	w := newWorker(db)
	if _, err := w.drain(context.Background()); err != nil {
		t.Fatalf("drain() error: %v", err)
	}

	last, err := audit.LastEventID(db)
	if err != nil {
		t.Fatalf("LastEventID() error: %v", err)
	}
	if last != w.cursor {
		t.Errorf("ledger cursor = %d, worker cursor = %d; restart would diverge", last, w.cursor)
	}
}

func TestWorker_MissingResourceSkipsEvent(t *testing.T) {
	db := testDB(t)
	jobID, _ := seed(t, db)

	// An event whose work order points at a resource that no longer
	// exists must not wedge the consumer.
	ghost := "res-ghost"
	wo := models.WorkOrder{
		ID: "wo-ghost", JobID: jobID, ResourceID: &ghost,
		Kind: models.KindProduction, Status: models.StatusQueued,
		TargetQty: 10, Version: 1,
	}
	if err := db.Create(&wo).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	ev := models.ChangeEvent{Kind: models.EventWorkOrderCreated, WorkOrderID: &wo.ID, JobID: jobID, ActorID: "s"}
	if err := db.Create(&ev).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}

	w := newWorker(db)
	n, err := w.drain(context.Background())
	if err != nil {
		t.Fatalf("drain() error: %v", err)
	}
	if n != 1 {
		t.Errorf("drained = %d, want 1 (skipped, not stuck)", n)
	}

	// The event is still audited so the cursor advances past it.
	var recs int64
	db.Model(&models.AuditRecord{}).Count(&recs)
	if recs != 1 {
		t.Errorf("ledger records = %d, want 1", recs)
	}
}

func TestWorker_RefreshesJobCache(t *testing.T) {
	db := testDB(t)
	jobID, resourceID := seed(t, db)

	wo, err := workorder.Assign(db, workorder.AssignOpts{
		JobID: jobID, ResourceID: resourceID, ActorID: "scheduler", TargetQty: 100,
	})
	if err != nil {
		t.Fatalf("Assign() error: %v", err)
	}
	if _, err := workorder.Start(db, wo.ID, "alice"); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	// Wipe the cache to simulate a write path that missed the refresh;
	// the consumer repairs it.
	if err := db.Model(&models.Job{}).Where("id = ?", jobID).
		Update("cached_status", models.JobUnassigned).Error; err != nil {
		t.Fatalf("wipe cache: %v", err)
	}

	w := newWorker(db)
	if _, err := w.drain(context.Background()); err != nil {
		t.Fatalf("drain() error: %v", err)
	}

	var j models.Job
	db.First(&j, "id = ?", jobID)
	if j.CachedStatus != models.JobInProgress {
		t.Errorf("job cache = %q, want in_progress", j.CachedStatus)
	}
}
