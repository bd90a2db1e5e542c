package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestWorkOrder_Fields(t *testing.T) {
	typ := reflect.TypeOf(WorkOrder{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:32")
	assertGormTag(t, typ, "JobID", "size:32")
	assertGormTag(t, typ, "JobID", "index")
	assertGormTag(t, typ, "ResourceID", "size:32")
	assertGormTag(t, typ, "ResourceID", "index")
	assertGormTag(t, typ, "Kind", "size:16")
	assertGormTag(t, typ, "Kind", "default:production")
	assertGormTag(t, typ, "Status", "size:16")
	assertGormTag(t, typ, "Status", "default:queued")
	assertGormTag(t, typ, "Status", "index")
	assertGormTag(t, typ, "TargetQty", "not null")
	assertGormTag(t, typ, "CompletedQty", "default:0")
	assertGormTag(t, typ, "OriginID", "size:32")
	assertGormTag(t, typ, "OriginID", "index")
	assertGormTag(t, typ, "Version", "default:1")
	assertGormTag(t, typ, "Version", "not null")

	assertFieldType(t, typ, "ID", "string")
	assertFieldType(t, typ, "ResourceID", "*string")
	assertFieldType(t, typ, "OriginID", "*string")
	assertFieldType(t, typ, "ScheduledStart", "*time.Time")
	assertFieldType(t, typ, "StartedAt", "*time.Time")
	assertFieldType(t, typ, "CompletedAt", "*time.Time")
	assertFieldType(t, typ, "CreatedAt", "time.Time")
}

func TestWorkOrder_Relations(t *testing.T) {
	typ := reflect.TypeOf(WorkOrder{})

	assertGormTag(t, typ, "Resource", "foreignKey:ResourceID")
	assertGormTag(t, typ, "Origin", "foreignKey:OriginID")

	assertFieldType(t, typ, "Resource", "*models.Resource")
	assertFieldType(t, typ, "Origin", "*models.WorkOrder")
}

func TestWorkOrder_Terminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusQueued, false},
		{StatusActive, false},
		{StatusPaused, false},
		{StatusCompleted, true},
		{StatusPartial, true},
	}
	for _, tt := range tests {
		wo := WorkOrder{Status: tt.status}
		if got := wo.Terminal(); got != tt.want {
			t.Errorf("Terminal() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestWorkOrder_Remaining(t *testing.T) {
	wo := WorkOrder{TargetQty: 100, CompletedQty: 40}
	if got := wo.Remaining(); got != 60 {
		t.Errorf("Remaining() = %d, want 60", got)
	}
}

func TestJob_Fields(t *testing.T) {
	typ := reflect.TypeOf(Job{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:32")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "CachedStatus", "size:16")
	assertGormTag(t, typ, "CachedStatus", "default:unassigned")
	assertGormTag(t, typ, "CachedStatus", "index")
	assertGormTag(t, typ, "WorkOrders", "foreignKey:JobID")

	assertFieldType(t, typ, "WorkOrders", "[]models.WorkOrder")
}

func TestResource_Fields(t *testing.T) {
	typ := reflect.TypeOf(Resource{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:32")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "SetupMinutes", "default:0")
	assertGormTag(t, typ, "UnitsPerHour", "default:0")
	assertGormTag(t, typ, "IsDown", "default:false")
	assertGormTag(t, typ, "IsDown", "index")
	assertGormTag(t, typ, "DownReason", "size:255")
	assertGormTag(t, typ, "ShiftedMin", "default:0")
	assertGormTag(t, typ, "Version", "default:1")

	assertFieldType(t, typ, "DownSince", "*time.Time")
	assertFieldType(t, typ, "ShiftedMin", "int")
}

func TestQueueEntry_Fields(t *testing.T) {
	typ := reflect.TypeOf(QueueEntry{})

	// Composite primary key
	assertGormTag(t, typ, "ResourceID", "primaryKey")
	assertGormTag(t, typ, "ResourceID", "size:32")
	assertGormTag(t, typ, "WorkOrderID", "primaryKey")
	assertGormTag(t, typ, "WorkOrderID", "size:32")
	assertGormTag(t, typ, "Position", "not null")
	assertGormTag(t, typ, "Position", "index")

	// Foreign key relations
	assertGormTag(t, typ, "Resource", "foreignKey:ResourceID")
	assertGormTag(t, typ, "WorkOrder", "foreignKey:WorkOrderID")
}

func TestScheduleViewEntry_Fields(t *testing.T) {
	typ := reflect.TypeOf(ScheduleViewEntry{})

	assertGormTag(t, typ, "WorkOrderID", "primaryKey")
	assertGormTag(t, typ, "WorkOrderID", "size:32")
	assertGormTag(t, typ, "ResourceID", "size:32")
	assertGormTag(t, typ, "ResourceID", "index")
	assertGormTag(t, typ, "ResourceName", "size:255")
	assertGormTag(t, typ, "JobID", "size:32")
	assertGormTag(t, typ, "JobID", "index")
	assertGormTag(t, typ, "StartAt", "index")
	assertGormTag(t, typ, "SourceVersion", "not null")

	assertFieldType(t, typ, "StartAt", "time.Time")
	assertFieldType(t, typ, "EndAt", "time.Time")
	assertFieldType(t, typ, "SourceVersion", "int")
}

func TestAuditRecord_Fields(t *testing.T) {
	typ := reflect.TypeOf(AuditRecord{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "EventID", "uniqueIndex")
	assertGormTag(t, typ, "ActorID", "size:64")
	assertGormTag(t, typ, "ActorID", "not null")
	assertGormTag(t, typ, "Action", "size:32")
	assertGormTag(t, typ, "Action", "not null")
	assertGormTag(t, typ, "Action", "index")
	assertGormTag(t, typ, "JobID", "size:32")
	assertGormTag(t, typ, "JobID", "index")
	assertGormTag(t, typ, "WorkOrderID", "size:32")
	assertGormTag(t, typ, "Before", "type:text")
	assertGormTag(t, typ, "After", "type:text")
	assertGormTag(t, typ, "CorrelationID", "size:32")
	assertGormTag(t, typ, "CorrelationID", "index")

	assertFieldType(t, typ, "ID", "uint")
	assertFieldType(t, typ, "EventID", "uint")
	assertFieldType(t, typ, "WorkOrderID", "*string")
}

func TestChangeEvent_Fields(t *testing.T) {
	typ := reflect.TypeOf(ChangeEvent{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "Kind", "size:32")
	assertGormTag(t, typ, "Kind", "not null")
	assertGormTag(t, typ, "Kind", "index")
	assertGormTag(t, typ, "WorkOrderID", "size:32")
	assertGormTag(t, typ, "JobID", "size:32")
	assertGormTag(t, typ, "ResourceID", "size:32")
	assertGormTag(t, typ, "Before", "type:text")
	assertGormTag(t, typ, "After", "type:text")
	assertGormTag(t, typ, "SourceVersion", "default:0")

	assertFieldType(t, typ, "ID", "uint")
	assertFieldType(t, typ, "WorkOrderID", "*string")
	assertFieldType(t, typ, "ResourceID", "*string")
	assertFieldType(t, typ, "JobID", "string")
}

func TestWorkOrder_Instantiation(t *testing.T) {
	resourceID := "res-aaaaa"
	originID := "wo-aaaaa"
	now := time.Now()
	wo := WorkOrder{
		ID:                   "wo-bbbbb",
		JobID:                "job-aaaaa",
		ResourceID:           &resourceID,
		Kind:                 KindProduction,
		Status:               StatusQueued,
		TargetQty:            60,
		CompletedQty:         0,
		EstimatedDurationMin: 135,
		OriginID:             &originID,
		Version:              1,
		CreatedAt:            now,
	}
	if *wo.OriginID != "wo-aaaaa" {
		t.Errorf("OriginID = %q, want wo-aaaaa", *wo.OriginID)
	}
	if wo.Remaining() != 60 {
		t.Errorf("Remaining() = %d, want 60", wo.Remaining())
	}
}

func TestResource_Instantiation(t *testing.T) {
	now := time.Now()
	r := Resource{
		ID:           "res-aaaaa",
		Name:         "Mill 1",
		SetupMinutes: 15,
		UnitsPerHour: 30,
		IsDown:       true,
		DownSince:    &now,
		DownReason:   "spindle failure",
		ShiftedMin:   45,
		Version:      3,
	}
	if !r.IsDown || r.DownSince == nil {
		t.Error("down state not set")
	}
	if r.ShiftedMin != 45 {
		t.Errorf("ShiftedMin = %d, want 45", r.ShiftedMin)
	}
}
