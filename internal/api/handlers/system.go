package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/brightpanel/brightpanel-go/pkg/utils"
	"github.com/brightpanel/brightpanel-go/pkg/version"
)

// GetSystemInfo returns host facts and the startup check results, re-run
// live so the endpoint reflects the current environment.
func (h *Handlers) GetSystemInfo(c *gin.Context) {
	ctx := c.Request.Context()

	checks, err := h.checker.Run(ctx)
	healthy := err == nil

	utils.SendSuccess(c, gin.H{
		"host":    h.checker.Host(ctx),
		"checks":  checks,
		"healthy": healthy,
		"build":   version.GetBuildInfo(),
	})
}
