// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/salon-ledger/backend/internal/integration/entrypoint/controller"
	"github.com/salon-ledger/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine               *gin.Engine
	healthController     *controller.HealthController
	authController       *controller.AuthController
	treatmentController  *controller.TreatmentController
	categoryController   *controller.CategoryController
	calendarController   *controller.CalendarController
	settlementController *controller.SettlementController
	signInRateLimiter    *middleware.RateLimiter
	authMiddleware       *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	authController *controller.AuthController,
	treatmentController *controller.TreatmentController,
	categoryController *controller.CategoryController,
	calendarController *controller.CalendarController,
	settlementController *controller.SettlementController,
	signInRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:     healthController,
		authController:       authController,
		treatmentController:  treatmentController,
		categoryController:   categoryController,
		calendarController:   calendarController,
		settlementController: settlementController,
		signInRateLimiter:    signInRateLimiter,
		authMiddleware:       authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.Default()

	r.engine.GET("/health", r.healthController.Check)
	r.setupAPIRoutes()

	return r.engine
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	{
		if r.authController != nil && r.signInRateLimiter != nil {
			auth := v1.Group("/auth")
			{
				auth.POST("/signin", r.signInRateLimiter.Middleware(), r.authController.SignIn)
				auth.POST("/refresh", r.authController.RefreshToken)
				auth.POST("/logout", r.authController.Logout)
			}
		}

		if r.treatmentController != nil && r.authMiddleware != nil {
			treatments := v1.Group("/treatments")
			treatments.Use(r.authMiddleware.Authenticate())
			{
				treatments.GET("", r.treatmentController.List)
				treatments.POST("", r.treatmentController.Create)
				treatments.PUT("/reorder", r.treatmentController.Reorder)
				treatments.PATCH("/:id", r.treatmentController.Update)
				treatments.DELETE("/:id", r.treatmentController.Delete)
			}
		}

		if r.categoryController != nil && r.authMiddleware != nil {
			categories := v1.Group("/categories")
			categories.Use(r.authMiddleware.Authenticate())
			{
				categories.GET("", r.categoryController.List)
				categories.POST("", r.categoryController.Create)
				categories.PUT("/reorder", r.categoryController.Reorder)
				categories.PATCH("/:id", r.categoryController.Update)
				categories.DELETE("/:id", r.categoryController.Delete)
			}
		}

		if r.calendarController != nil && r.authMiddleware != nil {
			cal := v1.Group("/calendar")
			cal.Use(r.authMiddleware.Authenticate())
			{
				cal.GET("/month", r.calendarController.GetMonth)
				cal.GET("/day", r.calendarController.GetDay)
				cal.POST("/records", r.calendarController.CreateRecord)
				cal.PATCH("/records/:id/count", r.calendarController.UpdateRecordCount)
				cal.DELETE("/records/:id", r.calendarController.DeleteRecord)
				cal.POST("/adjustments", r.calendarController.CreateAdjustment)
				cal.PATCH("/adjustments/:id", r.calendarController.UpdateAdjustment)
				cal.DELETE("/adjustments/:id", r.calendarController.DeleteAdjustment)
			}
		}

		if r.settlementController != nil && r.authMiddleware != nil {
			settlement := v1.Group("/settlement")
			settlement.Use(r.authMiddleware.Authenticate())
			{
				settlement.GET("", r.settlementController.Get)
				settlement.PUT("/expenses", r.settlementController.UpdateExpense)
				settlement.POST("/expenses/copy-previous", r.settlementController.CopyPreviousExpenses)
				settlement.DELETE("/expenses/:id", r.settlementController.DeleteExpense)
				settlement.POST("/report", r.settlementController.RequestReport)
			}
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
