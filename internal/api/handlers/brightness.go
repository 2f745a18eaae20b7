package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightpanel/brightpanel-go/internal/core/brightness"
	"github.com/brightpanel/brightpanel-go/internal/core/panel"
	"github.com/brightpanel/brightpanel-go/pkg/utils"
)

// GetBrightness reads the selected display's current level
func (h *Handlers) GetBrightness(c *gin.Context) {
	status := h.panel.Status()
	utils.SendSuccess(c, gin.H{
		"brightness":     status.Brightness,
		"selected_index": status.SelectedIndex,
	})
}

// SetBrightness applies a level to the selected display. The level is
// validated before anything touches the shell; out-of-range values are
// rejected, never clamped.
func (h *Handlers) SetBrightness(c *gin.Context) {
	var req struct {
		Level *int `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "level is required")
		return
	}

	if err := h.panel.SetBrightness(*req.Level); err != nil {
		switch {
		case errors.Is(err, brightness.ErrInvalidLevel):
			utils.SendError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, brightness.ErrNotSupported):
			utils.SendError(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, panel.ErrNoSuchDisplay):
			utils.SendError(c, http.StatusNotFound, err.Error())
		default:
			utils.SendError(c, http.StatusBadGateway, err.Error())
		}
		return
	}

	utils.SendSuccess(c, gin.H{"brightness": *req.Level})
}

// SlideBrightness feeds one slider event into the debounced pipeline. The
// write happens asynchronously once the stream pauses, so the response is
// 202.
func (h *Handlers) SlideBrightness(c *gin.Context) {
	var req struct {
		Level *int `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "level is required")
		return
	}

	h.panel.Slide(*req.Level)
	utils.SendAccepted(c, gin.H{"queued_level": *req.Level})
}
