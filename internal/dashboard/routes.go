package dashboard

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/shopline/internal/audit"
	"github.com/zulandar/shopline/internal/job"
	"github.com/zulandar/shopline/internal/schedview"
	"github.com/zulandar/shopline/internal/workorder"
	"gorm.io/gorm"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	router.GET("/api/schedule", handleSchedule(db))
	router.GET("/api/jobs/:id", handleJob(db))
	router.GET("/api/jobs/:id/audit", handleJobAudit(db))
	router.GET("/api/workorders/:id", handleWorkOrder(db))
	router.GET("/api/events", handleSSE(db))
}

// handleSchedule serves the schedule view filtered by resource and
// date range, sorted by effective start time.
func handleSchedule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var from, to *time.Time
		if s := c.Query("from"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "from: expected RFC3339 timestamp"})
				return
			}
			from = &t
		}
		if s := c.Query("to"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "to: expected RFC3339 timestamp"})
				return
			}
			to = &t
		}

		entries, err := schedview.Query(db, c.Query("resource"), from, to, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}

func handleJob(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		j, err := job.Get(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		orders, err := workorder.List(db, workorder.ListFilters{JobID: j.ID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"job":         j,
			"status":      job.Derive(orders),
			"work_orders": orders,
		})
	}
}

func handleJobAudit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := audit.ByJob(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": recs})
	}
}

func handleWorkOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		wo, err := workorder.Get(db, c.Param("id"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, workorder.ErrReferenceNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, wo)
	}
}
