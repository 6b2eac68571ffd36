package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"golang-admin-command-runner/internal/api/handlers"
	"golang-admin-command-runner/pkg/ratelimit"
)

func SetupRoutes(router *gin.Engine, healthHandler *handlers.HealthHandler, commandRunHandler *handlers.CommandRunHandler, limiter *ratelimit.KeyedLimiter, logger *logrus.Logger) {
	router.Use(handlers.RequestID())

	// Health check
	router.GET("/health", healthHandler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(handlers.Principal())
	{
		v1.GET("/commands", commandRunHandler.ListCommands)

		runs := v1.Group("/command-runs")
		{
			runs.POST("", handlers.RateLimit(limiter, logger), commandRunHandler.CreateCommandRun)
			runs.GET("", commandRunHandler.ListCommandRuns)
			runs.GET("/:id", commandRunHandler.GetCommandRun)
		}
	}
}
