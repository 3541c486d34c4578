package handlers

import (
	"net/http"

	"github.com/arnavshah/clinops-api-go/pkg/navigator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type drilldownState struct {
	ID       string            `json:"id"`
	Level    string            `json:"level"`
	Filters  navigator.Filters `json:"filters"`
	Selected int               `json:"selected"`
	Rows     any               `json:"rows"`
	Prompt   string            `json:"prompt,omitempty"`
}

func (h *Handler) drilldownResponse(c *gin.Context, sess *navigator.Session, prompt string) {
	rows, err := sess.Current(c.Request.Context())
	if err != nil {
		h.queryError(c, err)
		return
	}

	c.JSON(http.StatusOK, drilldownState{
		ID:       sess.ID,
		Level:    sess.Level().String(),
		Filters:  sess.Filters(),
		Selected: sess.Selection().Count(),
		Rows:     rows,
		Prompt:   prompt,
	})
}

// CreateDrilldown starts a drill-down session at the roster level
func (h *Handler) CreateDrilldown(c *gin.Context) {
	// An absent or malformed body means default filters.
	var filters navigator.Filters
	_ = c.ShouldBindJSON(&filters)

	sess := navigator.NewSession(uuid.NewString(), h.Reports, filters)
	h.Sessions.Put(sess)
	h.drilldownResponse(c, sess, "")
}

// GetDrilldown returns the session's current level and table
func (h *Handler) GetDrilldown(c *gin.Context) {
	sess, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown drill-down session"})
		return
	}
	h.drilldownResponse(c, sess, "")
}

// SelectDrilldownRows records the selected row keys for the current level
func (h *Handler) SelectDrilldownRows(c *gin.Context) {
	sess, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown drill-down session"})
		return
	}

	var req struct {
		Keys []int64 `json:"keys"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sel := sess.Select(req.Keys)
	resp := gin.H{"id": sess.ID, "level": sess.Level().String(), "selected": sel.Count()}
	if _, ok := sel.One(); !ok {
		resp["prompt"] = navigator.SelectExactlyOnePrompt
	}
	c.JSON(http.StatusOK, resp)
}

// DescendDrilldown moves the session one level down. A selection of
// zero or several rows is a held state: 409 with the prompt, the
// session stays at its level and no query runs.
func (h *Handler) DescendDrilldown(c *gin.Context) {
	sess, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown drill-down session"})
		return
	}

	if err := sess.Descend(c.Request.Context()); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"level": sess.Level().String(),
		})
		return
	}

	h.drilldownResponse(c, sess, "")
}

// ResetDrilldown replaces the roster filters and resets the session
func (h *Handler) ResetDrilldown(c *gin.Context) {
	sess, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown drill-down session"})
		return
	}

	var filters navigator.Filters
	if err := c.ShouldBindJSON(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess.SetFilters(filters)
	h.drilldownResponse(c, sess, "")
}
