// internal/app/router.go
package app

import (
	betaHandler "friendchat-service/internal/handlers/betaaccess"
	"friendchat-service/internal/middleware"
	"friendchat-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	BetaHandler    *betaHandler.BetaAccessHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *session.RateLimiter
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Beta Access Routes ====================
	beta := api.Group("/beta-access")
	{
		beta.POST("/login", middleware.RateLimitLogin(h.RateLimiter, logger), h.BetaHandler.Login)
		beta.POST("/validate", h.BetaHandler.Validate)
		beta.POST("/session", h.BetaHandler.Session)
	}

	// ==================== Admin Beta Access Routes ====================
	admin := api.Group("/beta-access/admin")
	admin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireRole("service_role", "admin"))
	{
		admin.POST("", h.BetaHandler.CreateToken)
		admin.GET("/tokens", h.BetaHandler.ListTokens)
	}
}
