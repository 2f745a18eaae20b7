package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightpanel/brightpanel-go/internal/core/settings"
	"github.com/brightpanel/brightpanel-go/pkg/utils"
)

// GetSettings returns the persisted panel settings
func (h *Handlers) GetSettings(c *gin.Context) {
	utils.SendSuccess(c, h.store.Load())
}

// UpdateSettings persists new panel settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req settings.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "invalid settings payload")
		return
	}

	if req.LastBrightness < 0 || req.LastBrightness > 100 {
		utils.SendError(c, http.StatusBadRequest, "last_brightness must be between 0 and 100")
		return
	}
	if req.LastDisplayIndex < 0 {
		utils.SendError(c, http.StatusBadRequest, "last_display_index must not be negative")
		return
	}

	if err := h.store.Save(req); err != nil {
		h.log.WithError(err).Error("Failed to save settings")
		utils.SendError(c, http.StatusInternalServerError, "failed to save settings")
		return
	}

	if req.WindowGeometry != "" {
		h.panel.SetGeometry(req.WindowGeometry)
	}

	utils.SendSuccess(c, req)
}
