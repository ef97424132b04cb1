// internal/app/router.go
package app

import (
	"net/http"

	authHandler "bakery-popup/internal/handlers/auth"
	popupHandler "bakery-popup/internal/handlers/popup"
	wsHandler "bakery-popup/internal/handlers/websocket"
	"bakery-popup/internal/metrics"
	"bakery-popup/internal/middleware"
	"bakery-popup/internal/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler       *authHandler.AuthHandler
	PopupHandler      *popupHandler.PopupHandler
	WSHandler         *wsHandler.WebSocketHandler
	AuthMiddleware    *middleware.AuthMiddleware
	ActivationLimiter *ratelimit.Limiter
	SaveLimiter       *ratelimit.Limiter
	Metrics           *metrics.PopupMetrics
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Metrics ====================
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	// ==================== Storefront ====================
	activationLimit := middleware.RateLimit(h.ActivationLimiter, logger)

	r.GET("/ws", h.WSHandler.HandleConnection)
	api.GET("/popup/feed", activationLimit, h.PopupHandler.GetFeed)

	// ==================== Operator Sessions ====================
	auth := api.Group("/auth")
	auth.Use(h.AuthMiddleware.OperatorOnly()...)
	{
		auth.GET("/me", h.AuthHandler.GetMe)
		auth.POST("/logout", h.AuthHandler.Logout)
		auth.POST("/logout-all", h.AuthHandler.LogoutAll)
		auth.GET("/sessions", h.AuthHandler.GetActiveSessions)
		auth.DELETE("/sessions/:jti", h.AuthHandler.RevokeSession)
	}

	// ==================== Operator Routes ====================
	admin := api.Group("/admin/popup")
	admin.Use(h.AuthMiddleware.OperatorOnly()...)
	{
		admin.GET("/offers", h.PopupHandler.ListOffers)
		admin.GET("/offers/main/form", h.PopupHandler.GetEditForm)
		admin.PUT("/offers/main", middleware.RateLimit(h.SaveLimiter, logger), h.PopupHandler.SaveMainOffer)
		admin.POST("/preview", h.PopupHandler.Preview)

		admin.GET("/config", h.PopupHandler.GetConfig)
		admin.PUT("/config", middleware.RateLimit(h.SaveLimiter, logger), h.PopupHandler.UpdateConfig)

		admin.GET("/ws/stats", h.WSHandler.GetStats)
	}
}
