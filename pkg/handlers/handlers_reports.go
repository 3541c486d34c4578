package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/arnavshah/clinops-api-go/pkg/reports"
	"github.com/arnavshah/clinops-api-go/pkg/reshape"
	"github.com/gin-gonic/gin"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func parseTimeParam(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GetRoster returns the all-clinicians rollup for the selected month
func (h *Handler) GetRoster(c *gin.Context) {
	month := c.DefaultQuery("month", reports.MonthFilterAll)

	rows, err := h.Reports.Roster(c.Request.Context(), month)
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "rows": rows})
}

// GetClinicianShifts returns the per-shift breakdown for one clinician
func (h *Handler) GetClinicianShifts(c *gin.Context) {
	personID, err := strconv.ParseInt(c.Param("personid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}
	month := c.DefaultQuery("month", reports.MonthFilterAll)

	rows, err := h.Reports.ClinicianShifts(c.Request.Context(), personID, month)
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"personid": personID, "month": month, "rows": rows})
}

// GetShiftConsultations returns the consultations within one shift
func (h *Handler) GetShiftConsultations(c *gin.Context) {
	rslid, err := strconv.ParseInt(c.Param("rslid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shift id"})
		return
	}

	rows, err := h.Reports.ShiftConsultations(c.Request.Context(), rslid)
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rslid": rslid, "rows": rows})
}

// GetCaseDetail returns the case with its consultations and survey
func (h *Handler) GetCaseDetail(c *gin.Context) {
	caseno, err := strconv.ParseInt(c.Param("caseno"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case number"})
		return
	}

	rows, err := h.Reports.CaseDetail(c.Request.Context(), caseno)
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"caseno": caseno, "rows": rows})
}

// GetMonthOptions returns the month-year filter choices
func (h *Handler) GetMonthOptions(c *gin.Context) {
	rows, err := h.Reports.RotaActivity(c.Request.Context())
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": reshape.MonthYearOptions(rows)})
}

// GetHourlyActivity returns the gap-filled per-hour series
func (h *Handler) GetHourlyActivity(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GetDailyRollup returns the per-role daily hours/cost series
func (h *Handler) GetDailyRollup(c *gin.Context) {
	start, ok := parseTimeParam(c.Query("start"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start is required (YYYY-MM-DD)"})
		return
	}
	end, ok := parseTimeParam(c.Query("end"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end is required (YYYY-MM-DD)"})
		return
	}

	rows, err := h.Reports.RotaActivity(c.Request.Context())
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": reshape.DailyRollup(rows, start, end)})
}
