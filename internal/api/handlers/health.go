package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brightpanel/brightpanel-go/pkg/version"
)

// Health returns basic service health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "brightpanel",
		"version":   version.GetVersion(),
		"displays":  h.detector.Count(),
		"clients":   h.wsHub.GetClientCount(),
	})
}
