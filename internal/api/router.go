package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/internal/api/handlers"
	"github.com/brightpanel/brightpanel-go/internal/api/middleware"
	"github.com/brightpanel/brightpanel-go/internal/config"
	"github.com/brightpanel/brightpanel-go/internal/websocket"
)

// NewRouter creates and configures the main HTTP router
func NewRouter(cfg *config.Config, logger *logrus.Logger, h *handlers.Handlers, wsHub *websocket.Hub) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.ErrorHandlingMiddleware(logger))
	router.Use(middleware.ErrorResponseMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware())

	// Public routes
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoint (no auth required for connection)
	router.GET("/ws", h.WebSocketHandler(wsHub))

	// API v1 routes
	api := router.Group("/api/v1")
	api.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		displays := api.Group("/displays")
		{
			displays.GET("", h.GetDisplays)
			displays.POST("/refresh", h.RefreshDisplays)
			displays.POST("/select", h.SelectDisplay)
			displays.GET("/support", h.TestSupport)
		}

		brightness := api.Group("/brightness")
		{
			brightness.GET("", h.GetBrightness)
			brightness.PUT("", h.SetBrightness)
			brightness.POST("/slide", h.SlideBrightness)
		}

		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)

		api.GET("/history", h.GetHistory)

		api.GET("/system/info", h.GetSystemInfo)
		api.GET("/ws/stats", h.GetWebSocketStats)
	}

	return router
}
