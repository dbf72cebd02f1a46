package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron"

	"github.com/0unveiled/backend/internal/cache"
	"github.com/0unveiled/backend/internal/clients/github"
	redisclient "github.com/0unveiled/backend/internal/clients/redis"
	"github.com/0unveiled/backend/internal/db"
	"github.com/0unveiled/backend/internal/handlers"
	"github.com/0unveiled/backend/internal/middleware"
	"github.com/0unveiled/backend/internal/observability"
	"github.com/0unveiled/backend/internal/platform/envutil"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/platform/resend"
	"github.com/0unveiled/backend/internal/realtime"
	"github.com/0unveiled/backend/internal/realtime/bus"
	"github.com/0unveiled/backend/internal/repos"
	"github.com/0unveiled/backend/internal/server"
	"github.com/0unveiled/backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	// Logger
	log, err := logger.New(envutil.Str("MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	if shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "0unveiled-backend",
		Environment: envutil.Str("MODE", "development"),
	}); shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	gormDB := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(gormDB, log)
	showcaseRepo := repos.NewShowcaseRepo(gormDB, log)
	skillRepo := repos.NewSkillRepo(gormDB, log)
	notificationRepo := repos.NewNotificationRepo(gormDB, log)
	leaderboardRepo := repos.NewLeaderboardRepo(gormDB, log)

	// Realtime
	log.Info("Setting up SSE hub from main...")
	hub := realtime.NewSSEHub(log)
	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}

	var rdb *goredis.Client
	if envutil.Str("REDIS_ADDR", "") != "" {
		rdb, err = redisclient.New(log)
		if err != nil {
			log.Warn("Redis unreachable, continuing without it", "error", err)
			rdb = nil
		}
	}
	if rdb != nil {
		redisBus, err := bus.NewRedisBus(log, rdb)
		if err != nil {
			log.Warn("Redis bus init failed, events stay local", "error", err)
		} else if err := redisBus.StartForwarder(ctx, hub.Broadcast); err != nil {
			log.Warn("Redis bus forwarder failed, events stay local", "error", err)
		} else {
			emitter = &services.BusEmitter{Bus: redisBus}
		}
	}

	// Clients
	memCache := cache.New(nil)
	githubClient, err := github.NewFromEnv(log)
	if err != nil {
		log.Error("GitHub client init failed", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services from main...")
	avatarService, err := services.NewAvatarService(log, userRepo)
	if err != nil {
		log.Error("Avatar service init failed", "error", err)
		os.Exit(1)
	}
	authService, err := services.NewAuthService(log, userRepo, avatarService, memCache, services.AuthConfigFromEnv())
	if err != nil {
		log.Error("Auth service init failed", "error", err)
		os.Exit(1)
	}
	userService := services.NewUserService(log, userRepo, skillRepo, showcaseRepo, githubClient, avatarService, memCache)
	skillService := services.NewSkillService(log, userRepo, skillRepo)
	showcaseService := services.NewShowcaseService(log, userRepo, showcaseRepo, githubClient)
	notificationService := services.NewNotificationService(log, notificationRepo)
	leaderboardService := services.NewLeaderboardService(log, rdb, leaderboardRepo, memCache)
	fetcher := services.NewRepoFetcher(log, githubClient)
	notifier := services.NewAnalysisNotifier(emitter)
	analysisService := services.NewAnalysisService(log, userRepo, showcaseRepo, skillRepo,
		notificationRepo, githubClient, fetcher, notifier, leaderboardService)

	// Digest cron
	if envutil.Bool("DIGEST_CRON_ENABLED", false) {
		mailClient, err := resend.NewFromEnv(log)
		if err != nil {
			log.Warn("Digest cron disabled", "error", err)
		} else {
			digestService := services.NewDigestService(log, userRepo, notificationRepo, mailClient)
			scheduler := cron.New()
			// Seconds-first format; weekly fires Monday 00:00.
			mustSchedule(log, scheduler, "@daily", "daily digest", func(runCtx context.Context, now time.Time) (int, int, error) {
				return digestService.ProcessDailyDigests(runCtx, now)
			})
			mustSchedule(log, scheduler, "0 0 0 * * 1", "weekly digest", func(runCtx context.Context, now time.Time) (int, int, error) {
				return digestService.ProcessWeeklyDigests(runCtx, now)
			})
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := handlers.NewHealthHandler()
	analyzeHandler := handlers.NewAnalyzeHandler(log, analysisService)
	authHandler := handlers.NewAuthHandler(log, authService)
	userHandler := handlers.NewUserHandler(log, userService)
	showcaseHandler := handlers.NewShowcaseHandler(log, showcaseService)
	skillHandler := handlers.NewSkillHandler(log, skillService)
	notificationHandler := handlers.NewNotificationHandler(log, notificationService)
	leaderboardHandler := handlers.NewLeaderboardHandler(log, leaderboardService)
	eventsHandler := handlers.NewEventsHandler(log, hub)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		Log:                 log,
		AuthMiddleware:      authMiddleware,
		HealthHandler:       healthHandler,
		AnalyzeHandler:      analyzeHandler,
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		ShowcaseHandler:     showcaseHandler,
		SkillHandler:        skillHandler,
		NotificationHandler: notificationHandler,
		LeaderboardHandler:  leaderboardHandler,
		EventsHandler:       eventsHandler,
	})

	port := envutil.Str("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func mustSchedule(log *logger.Logger, scheduler *cron.Cron, spec, name string, run func(context.Context, time.Time) (int, int, error)) {
	err := scheduler.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		sent, failed, err := run(runCtx, time.Now().UTC())
		if err != nil {
			log.Error("Digest run failed", "job", name, "error", err)
			return
		}
		log.Info("Digest run finished", "job", name, "sent", sent, "failed", failed)
	})
	if err != nil {
		log.Error("Cron schedule rejected", "job", name, "spec", spec, "error", err)
		os.Exit(1)
	}
}
