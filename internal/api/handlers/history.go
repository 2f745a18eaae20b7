package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/brightpanel/brightpanel-go/pkg/utils"
)

// GetHistory returns recent brightness changes, newest first
func (h *Handlers) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.SendError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.log.WithError(err).Error("Failed to query brightness history")
		utils.SendError(c, http.StatusInternalServerError, "failed to query history")
		return
	}

	utils.SendSuccess(c, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
