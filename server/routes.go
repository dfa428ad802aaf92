package server

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every route on router. metrics may be nil, which
// leaves /metrics unregistered.
func SetupRoutes(router *gin.Engine, h *Handlers, metrics *Metrics, staticDir string) {
	router.GET("/health", HealthCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.POST("/calculate", h.Calculate)
		api.POST("/tool", h.Tool)
		api.GET("/tool/schema", h.ToolSchema)
	}

	router.NoRoute(frontend(staticDir))
}
