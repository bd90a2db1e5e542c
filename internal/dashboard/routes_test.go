package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/shopline/internal/models"
	"github.com/zulandar/shopline/internal/schedview"
	"github.com/zulandar/shopline/internal/workorder"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all required tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Job{},
		&models.Resource{},
		&models.WorkOrder{},
		&models.QueueEntry{},
		&models.ScheduleViewEntry{},
		&models.AuditRecord{},
		&models.ChangeEvent{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	registerRoutes(router, db)
	return router
}

func seed(t *testing.T, db *gorm.DB) (jobID, resourceID string) {
	t.Helper()
	j := models.Job{ID: "job-aaaaa", Name: "Widget batch", CachedStatus: models.JobUnassigned}
	if err := db.Create(&j).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	r := models.Resource{ID: "res-aaaaa", Name: "Mill 1", SetupMinutes: 15, UnitsPerHour: 30, Version: 1}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("seed resource: %v", err)
	}
	return j.ID, r.ID
}

func doGET(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHandleSchedule(t *testing.T) {
	db := testDB(t)
	jobID, resourceID := seed(t, db)
	router := testRouter(db)

	wo, err := workorder.Assign(db, workorder.AssignOpts{
		JobID: jobID, ResourceID: resourceID, ActorID: "s", TargetQty: 100,
	})
	if err != nil {
		t.Fatalf("Assign() error: %v", err)
	}
	if err := schedview.Project(db, wo, time.Now()); err != nil {
		t.Fatalf("Project() error: %v", err)
	}

	w := doGET(t, router, "/api/schedule")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Entries []models.ScheduleViewEntry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].WorkOrderID != wo.ID {
		t.Errorf("entries = %+v, want one for %s", resp.Entries, wo.ID)
	}

	// Resource filter.
	w = doGET(t, router, "/api/schedule?resource=res-other")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Entries) != 0 {
		t.Errorf("filtered entries = %d, want 0", len(resp.Entries))
	}
}

func TestHandleSchedule_BadTimestamps(t *testing.T) {
	db := testDB(t)
	router := testRouter(db)

	for _, path := range []string{
		"/api/schedule?from=yesterday",
		"/api/schedule?to=2026-99-99",
	} {
		w := doGET(t, router, path)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, w.Code)
		}
	}
}

func TestHandleJob(t *testing.T) {
	db := testDB(t)
	jobID, resourceID := seed(t, db)
	router := testRouter(db)

	if _, err := workorder.Assign(db, workorder.AssignOpts{
		JobID: jobID, ResourceID: resourceID, ActorID: "s", TargetQty: 100,
	}); err != nil {
		t.Fatalf("Assign() error: %v", err)
	}

	w := doGET(t, router, "/api/jobs/"+jobID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status     string             `json:"status"`
		WorkOrders []models.WorkOrder `json:"work_orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != models.JobAssigned {
		t.Errorf("status = %q, want assigned", resp.Status)
	}
	if len(resp.WorkOrders) != 1 {
		t.Errorf("work orders = %d, want 1", len(resp.WorkOrders))
	}

	if w := doGET(t, router, "/api/jobs/job-nope"); w.Code != http.StatusNotFound {
		t.Errorf("missing job status = %d, want 404", w.Code)
	}
}

func TestHandleWorkOrder(t *testing.T) {
	db := testDB(t)
	jobID, resourceID := seed(t, db)
	router := testRouter(db)

	wo, err := workorder.Assign(db, workorder.AssignOpts{
		JobID: jobID, ResourceID: resourceID, ActorID: "s", TargetQty: 100,
	})
	if err != nil {
		t.Fatalf("Assign() error: %v", err)
	}

	w := doGET(t, router, "/api/workorders/"+wo.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got models.WorkOrder
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != wo.ID || got.Status != models.StatusQueued {
		t.Errorf("work order = %+v", got)
	}

	if w := doGET(t, router, "/api/workorders/wo-nope"); w.Code != http.StatusNotFound {
		t.Errorf("missing order status = %d, want 404", w.Code)
	}
}

func TestHandleJobAudit(t *testing.T) {
	db := testDB(t)
	jobID, _ := seed(t, db)
	router := testRouter(db)

	rec := models.AuditRecord{EventID: 1, ActorID: "s", Action: "work_order.created", JobID: jobID}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed record: %v", err)
	}

	w := doGET(t, router, "/api/jobs/"+jobID+"/audit")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Records []models.AuditRecord `json:"records"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Records) != 1 || resp.Records[0].Action != "work_order.created" {
		t.Errorf("records = %+v", resp.Records)
	}
}

func TestHandleSSE_NilDB(t *testing.T) {
	router := testRouter(nil)

	w := doGET(t, router, "/api/events")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q, want text/event-stream", ct)
	}
	if !strings.Contains(w.Body.String(), "event: connected") {
		t.Errorf("body = %q, want connected event", w.Body.String())
	}
}
