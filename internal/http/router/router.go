package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/moderation-backend/internal/config"
	"github.com/ignatzorin/moderation-backend/internal/http/handlers"
	"github.com/ignatzorin/moderation-backend/internal/http/middleware"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	contentHandler *handlers.ContentHandler,
	flagHandler *handlers.FlagHandler,
	appealHandler *handlers.AppealHandler,
	configHandler *handlers.ConfigHandler,
	notificationHandler *handlers.NotificationHandler,
	evidenceHandler *handlers.EvidenceHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/uploads", http.Dir(cfg.EvidenceStorePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.FlagRatePeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/me", authHandler.Me)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/contents/:id", middleware.UUIDValidator("id"), contentHandler.Get)
	api.GET("/contents/:id/decisions", middleware.UUIDValidator("id"), contentHandler.ListDecisions)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/contents", contentHandler.Create)

		flagLimit := middleware.RateLimitMiddleware(cfg.FlagRateLimit, cfg.FlagRatePeriod)
		protected.POST("/flags", flagLimit, flagHandler.Submit)
		protected.GET("/flags/my", flagHandler.ListMy)

		appealLimit := middleware.RateLimitMiddleware(cfg.AppealRateLimit, cfg.AppealRatePeriod)
		protected.POST("/appeals", appealLimit, appealHandler.Submit)
		protected.GET("/appeals/my", appealHandler.ListMy)
		protected.GET("/appeals/:id", middleware.UUIDValidator("id"), appealHandler.Get)

		voteLimit := middleware.RateLimitMiddleware(cfg.VoteRateLimit, cfg.VoteRatePeriod)
		protected.POST("/appeals/:id/votes", middleware.UUIDValidator("id"), voteLimit, appealHandler.CastVote)

		protected.POST("/evidence", evidenceHandler.Upload)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
	}

	// Маршруты модераторов
	moderation := api.Group("/")
	moderation.Use(middleware.AuthMiddleware(tokenManager))
	moderation.Use(middleware.RequireRole(models.RoleModerator, models.RoleAdmin))
	{
		moderation.GET("/appeals/queue", appealHandler.ListQueue)
		moderation.GET("/appeals/:id/votes", middleware.UUIDValidator("id"), appealHandler.ListVotes)
		moderation.GET("/contents/:id/flags", middleware.UUIDValidator("id"), flagHandler.ListByContent)
	}

	// Маршруты администраторов
	admin := api.Group("/moderation")
	admin.Use(middleware.AuthMiddleware(tokenManager))
	{
		admin.GET("/config", configHandler.Get)
		admin.PUT("/config", middleware.RequireRole(models.RoleAdmin), configHandler.Update)
	}

	return r
}
