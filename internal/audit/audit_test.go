package audit

import (
	"testing"

	"github.com/zulandar/shopline/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditRecord{}, &models.ChangeEvent{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func woID(s string) *string { return &s }

func TestRecordEvent(t *testing.T) {
	db := testDB(t)
	ev := models.ChangeEvent{
		ID:          1,
		Kind:        models.EventWorkOrderCreated,
		WorkOrderID: woID("wo-aaaaa"),
		JobID:       "job-aaaaa",
		ActorID:     "scheduler",
		After:       `{"id":"wo-aaaaa"}`,
	}
	if err := RecordEvent(db, &ev); err != nil {
		t.Fatalf("RecordEvent() error: %v", err)
	}

	recs, err := ByJob(db, "job-aaaaa")
	if err != nil {
		t.Fatalf("ByJob() error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].Action != "work_order.created" {
		t.Errorf("action = %q, want work_order.created", recs[0].Action)
	}
	if recs[0].EventID != 1 {
		t.Errorf("event id = %d, want 1", recs[0].EventID)
	}
}

func TestRecordEvent_ReplayIdempotent(t *testing.T) {
	db := testDB(t)
	ev := models.ChangeEvent{
		ID:      7,
		Kind:    models.EventDowntimeReported,
		JobID:   "",
		ActorID: "alice",
	}
	for i := 0; i < 3; i++ {
		if err := RecordEvent(db, &ev); err != nil {
			t.Fatalf("RecordEvent() #%d error: %v", i, err)
		}
	}

	var count int64
	db.Model(&models.AuditRecord{}).Count(&count)
	if count != 1 {
		t.Errorf("records = %d after replay, want 1", count)
	}
}

func TestRecordEvent_UnknownKindKeepsRawName(t *testing.T) {
	db := testDB(t)
	ev := models.ChangeEvent{ID: 2, Kind: "something_new", ActorID: "x"}
	if err := RecordEvent(db, &ev); err != nil {
		t.Fatalf("RecordEvent() error: %v", err)
	}

	var rec models.AuditRecord
	db.First(&rec, "event_id = ?", 2)
	if rec.Action != "something_new" {
		t.Errorf("action = %q, want raw kind", rec.Action)
	}
}

func TestByWorkOrder_CausalOrder(t *testing.T) {
	db := testDB(t)
	kinds := []string{
		models.EventWorkOrderCreated,
		models.EventWorkOrderStatus,
		models.EventWorkOrderStatus,
	}
	for i, kind := range kinds {
		ev := models.ChangeEvent{ID: uint(i + 1), Kind: kind, WorkOrderID: woID("wo-aaaaa"), ActorID: "alice"}
		if err := RecordEvent(db, &ev); err != nil {
			t.Fatalf("RecordEvent() #%d error: %v", i, err)
		}
	}

	recs, err := ByWorkOrder(db, "wo-aaaaa")
	if err != nil {
		t.Fatalf("ByWorkOrder() error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records = %d, want 3", len(recs))
	}
	want := []string{"work_order.created", "work_order.transition", "work_order.transition"}
	for i, rec := range recs {
		if rec.Action != want[i] {
			t.Errorf("record %d action = %q, want %q", i, rec.Action, want[i])
		}
		if i > 0 && recs[i].ID <= recs[i-1].ID {
			t.Errorf("record %d out of sequence", i)
		}
	}
}

func TestLastEventID(t *testing.T) {
	db := testDB(t)

	last, err := LastEventID(db)
	if err != nil {
		t.Fatalf("LastEventID() error: %v", err)
	}
	if last != 0 {
		t.Errorf("empty ledger last = %d, want 0", last)
	}

	for _, id := range []uint{3, 9, 5} {
		ev := models.ChangeEvent{ID: id, Kind: models.EventWorkOrderStatus, ActorID: "x"}
		if err := RecordEvent(db, &ev); err != nil {
			t.Fatalf("RecordEvent(%d) error: %v", id, err)
		}
	}

	last, err = LastEventID(db)
	if err != nil {
		t.Fatalf("LastEventID() error: %v", err)
	}
	if last != 9 {
		t.Errorf("last = %d, want 9", last)
	}
}
