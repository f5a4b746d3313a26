// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/target-ledger/backend/internal/integration/entrypoint/controller"
	"github.com/target-ledger/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                   *gin.Engine
	healthController         *controller.HealthController
	targetController         *controller.TargetController
	progressController       *controller.ProgressController
	transferController       *controller.TransferController
	reconciliationController *controller.ReconciliationController
	recalculateRateLimiter   *middleware.RateLimiter
	authMiddleware           *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	targetController *controller.TargetController,
	progressController *controller.ProgressController,
	transferController *controller.TransferController,
	reconciliationController *controller.ReconciliationController,
	recalculateRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:         healthController,
		targetController:         targetController,
		progressController:       progressController,
		transferController:       transferController,
		reconciliationController: reconciliationController,
		recalculateRateLimiter:   recalculateRateLimiter,
		authMiddleware:           authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()
	r.engine.Use(middleware.RequestMetrics())

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check and metrics endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	// Ledger routes are only mounted when the store is available
	if r.authMiddleware == nil {
		return
	}

	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())

	if r.targetController != nil {
		targets := v1.Group("/targets")
		{
			targets.POST("", r.targetController.Create)
			targets.GET("", r.targetController.List)
			targets.GET("/:id", r.targetController.Get)
			targets.PATCH("/:id", r.targetController.Update)
			targets.POST("/:id/extend", r.targetController.Extend)
			targets.DELETE("/:id", r.targetController.Delete)

			if r.progressController != nil {
				targets.POST("/:id/progress", r.progressController.Submit)
				targets.GET("/:id/progress", r.progressController.List)
			}
			if r.reconciliationController != nil {
				targets.GET("/:id/diagnostics", r.reconciliationController.Diagnostics)
			}
		}
	}

	if r.progressController != nil {
		v1.POST("/progress/:id/decision", r.progressController.Decide)
	}

	if r.transferController != nil {
		transfers := v1.Group("/transfers")
		{
			transfers.POST("", r.transferController.Create)
			transfers.GET("", r.transferController.List)
			transfers.POST("/:id/reverse", r.transferController.Reverse)
		}
	}

	if r.reconciliationController != nil {
		v1.GET("/rollups/:period", r.reconciliationController.Rollup)

		recalculate := []gin.HandlerFunc{r.reconciliationController.Recalculate}
		if r.recalculateRateLimiter != nil {
			recalculate = append([]gin.HandlerFunc{r.recalculateRateLimiter.Middleware()}, recalculate...)
		}
		v1.POST("/reconciliation/recalculate", recalculate...)
	}
}
