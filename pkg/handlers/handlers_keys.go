package handlers

import (
	"net/http"
	"time"

	"github.com/arnavshah/clinops-api-go/pkg/auth"
	"github.com/arnavshah/clinops-api-go/pkg/database"
	"github.com/arnavshah/clinops-api-go/pkg/reports"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordUsage records a report pull in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, rowCount int) {
	keyRaw, exists := c.Get("reportKey")
	if !exists {
		return
	}
	reportKey := keyRaw.(*database.ReportKey)

	today := time.Now().Format("2006-01-02")

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"rows_served":   gorm.Expr("rows_served + ?", rowCount),
		}),
	}).Create(&database.ReportKeyUsage{
		KeyID:        reportKey.ID,
		Date:         today,
		RequestCount: 1,
		RowsServed:   rowCount,
	})
}

// ExportRoster serves the roster rollup to a report-key consumer
func (h *Handler) ExportRoster(c *gin.Context) {
	month := c.DefaultQuery("month", reports.MonthFilterAll)

	rows, err := h.Reports.Roster(c.Request.Context(), month)
	if err != nil {
		h.queryError(c, err)
		return
	}

	h.RecordUsage(c, len(rows))
	c.JSON(http.StatusOK, gin.H{"month": month, "rows": rows})
}

// ExportHourlyActivity serves the hourly series to a report-key consumer
func (h *Handler) ExportHourlyActivity(c *gin.Context) {
	start, ok := parseTimeParam(c.Query("start"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start is required (YYYY-MM-DD HH:MM:SS)"})
		return
	}
	end, ok := parseTimeParam(c.Query("end"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end is required (YYYY-MM-DD HH:MM:SS)"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be after start"})
		return
	}

	rows, err := h.Reports.HourlyActivity(c.Request.Context(), start, end)
	if err != nil {
		h.queryError(c, err)
		return
	}

	h.RecordUsage(c, len(rows))
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GenerateKey creates a new report key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = 10000
	}

	// Generate key using HMAC
	key := auth.GenerateHMACKey(req.Name)

	// Create preview (e.g., sk_...****)
	preview := ""
	if len(key) > 8 {
		preview = key[:3] + "..." + key[len(key)-4:]
	} else {
		preview = "****"
	}

	reportKey := database.ReportKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: preview,
		RateLimit:  req.RateLimit,
	}

	if err := h.DB.Create(&reportKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all report keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.ReportKey
	h.DB.Find(&keys)
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes a report key
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	if err := h.DB.Delete(&database.ReportKey{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var usage []database.ReportKeyUsage
	h.DB.Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage)

	var totalRequests, totalRows int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalRows += int64(u.RowsServed)
	}

	c.JSON(http.StatusOK, gin.H{
		"usage": usage,
		"totals": gin.H{
			"requests": totalRequests,
			"rows":     totalRows,
		},
	})
}
