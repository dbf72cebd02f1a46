package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/0unveiled/backend/internal/handlers"
	"github.com/0unveiled/backend/internal/middleware"
	"github.com/0unveiled/backend/internal/platform/envutil"
	"github.com/0unveiled/backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *middleware.AuthMiddleware

	HealthHandler       *handlers.HealthHandler
	AnalyzeHandler      *handlers.AnalyzeHandler
	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	ShowcaseHandler     *handlers.ShowcaseHandler
	SkillHandler        *handlers.SkillHandler
	NotificationHandler *handlers.NotificationHandler
	LeaderboardHandler  *handlers.LeaderboardHandler
	EventsHandler       *handlers.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(middleware.Metrics())
	if envutil.Bool("OTEL_ENABLED", false) {
		router.Use(otelgin.Middleware("0unveiled-backend"))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", cfg.HealthHandler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/analyze/profile", cfg.AnalyzeHandler.AnalyzeProfile)

		api.GET("/leaderboard", cfg.LeaderboardHandler.Top)
		api.GET("/leaderboard/options", cfg.LeaderboardHandler.Options)

		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.GET("/auth/github/callback", cfg.AuthHandler.GitHubCallback)

		api.GET("/users/:username", cfg.UserHandler.GetProfile)
		api.GET("/users/:username/avatar", cfg.UserHandler.Avatar)
		api.GET("/skills/:username", cfg.SkillHandler.ListForUsername)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.GET("/auth/github/connect", cfg.AuthHandler.GitHubConnect)

		protected.PATCH("/users/me", cfg.UserHandler.UpdateMe)

		protected.GET("/showcase", cfg.ShowcaseHandler.List)
		protected.POST("/showcase", cfg.ShowcaseHandler.Create)
		protected.PATCH("/showcase/:id", cfg.ShowcaseHandler.Update)
		protected.DELETE("/showcase/:id", cfg.ShowcaseHandler.Delete)
		protected.POST("/showcase/import/github", cfg.ShowcaseHandler.ImportGitHub)

		protected.PATCH("/skills/:id/visibility", cfg.SkillHandler.SetVisibility)

		protected.GET("/notifications", cfg.NotificationHandler.List)
		protected.POST("/notifications/read", cfg.NotificationHandler.MarkRead)
		protected.POST("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)

		protected.GET("/events", cfg.EventsHandler.Stream)
	}

	return router
}

func corsOrigins() []string {
	origins := envutil.List("CORS_ORIGINS")
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
