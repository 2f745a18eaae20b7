package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/brightpanel/brightpanel-go/pkg/utils"
)

// GetDisplays returns the current display list
func (h *Handlers) GetDisplays(c *gin.Context) {
	utils.SendSuccess(c, gin.H{
		"displays": h.detector.Displays(),
		"count":    h.detector.Count(),
	})
}

// RefreshDisplays re-runs detection and returns the new list
func (h *Handlers) RefreshDisplays(c *gin.Context) {
	displays := h.panel.RefreshDisplays(c.Request.Context())
	utils.SendSuccess(c, gin.H{
		"displays": displays,
		"count":    len(displays),
	})
}

// SelectDisplay switches the panel's active display
func (h *Handlers) SelectDisplay(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "index is required")
		return
	}

	if err := h.panel.SelectDisplay(c.Request.Context(), *req.Index); err != nil {
		utils.SendError(c, http.StatusNotFound, err.Error())
		return
	}

	utils.SendSuccess(c, h.panel.Status())
}

// TestSupport runs the live capability probe against the selected display,
// or against an explicit ?index=N
func (h *Handlers) TestSupport(c *gin.Context) {
	if raw := c.Query("index"); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			utils.SendError(c, http.StatusBadRequest, "index must be an integer")
			return
		}
		if err := h.panel.SelectDisplay(c.Request.Context(), index); err != nil {
			utils.SendError(c, http.StatusNotFound, err.Error())
			return
		}
	}

	result, err := h.panel.TestSupport(c.Request.Context())
	if err != nil {
		utils.SendError(c, http.StatusNotFound, err.Error())
		return
	}

	utils.SendSuccess(c, result)
}
