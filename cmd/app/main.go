package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/todo-backend/internal/common/cache"
	"github.com/open-builders/todo-backend/internal/common/config"
	"github.com/open-builders/todo-backend/internal/common/logger"
	"github.com/open-builders/todo-backend/internal/common/ratelimit"
	categoryRepo "github.com/open-builders/todo-backend/internal/features/category/repository/postgres"
	projectRepo "github.com/open-builders/todo-backend/internal/features/project/repository/postgres"
	projectService "github.com/open-builders/todo-backend/internal/features/project/service"
	taskRepo "github.com/open-builders/todo-backend/internal/features/task/repository/postgres"
	userRepo "github.com/open-builders/todo-backend/internal/features/user/repository/postgres"
	userCache "github.com/open-builders/todo-backend/internal/features/user/repository/redis"
	apphttp "github.com/open-builders/todo-backend/internal/http"
	"github.com/open-builders/todo-backend/internal/platform/memory"
	"github.com/open-builders/todo-backend/internal/platform/postgres"
	"github.com/open-builders/todo-backend/internal/platform/redis"
	"github.com/open-builders/todo-backend/internal/platform/telegram"
	"github.com/open-builders/todo-backend/internal/service/notifications"
	"github.com/open-builders/todo-backend/internal/workers"
)

// @title           Todo Mini App API
// @version         1.0
// @description     Backend of a Telegram Mini App for shared to-do projects.
// @description     Clients authenticate with a bearer session token or with raw Telegram init-data.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Bearer <token>" issued by /auth/telegram, /auth/login or /auth/register

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name X-Telegram-Init-Data
// @description Raw Telegram Mini App init-data string

// @tag.name auth
// @tag.description Telegram and email login

// @tag.name projects
// @tag.description Project management

// @tag.name sharing
// @tag.description Share codes and members

// @tag.name categories
// @tag.description Project categories

// @tag.name tasks
// @tag.description Project tasks

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("todo-backend", cfg.Debug)
	logger.Info().
		Bool("debug", cfg.Debug).
		Str("storage", cfg.Storage.Driver).
		Bool("redis", cfg.Redis.Enabled).
		Msg("Starting todo backend")

	ctx := context.Background()

	var (
		repos  apphttp.Repositories
		checks []apphttp.HealthCheck
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		postgresClient, err := postgres.NewClient(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer postgresClient.Close()

		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(ctx, postgresClient.GetDB()); err != nil {
				logger.Fatal().Err(err).Msg("Failed to apply migrations")
			}
		}

		db := postgresClient.GetDB()
		repos = apphttp.Repositories{
			Users:      userRepo.NewPostgresRepository(db),
			Projects:   projectRepo.NewPostgresRepository(db),
			Categories: categoryRepo.NewPostgresRepository(db),
			Tasks:      taskRepo.NewPostgresRepository(db),
		}
		checks = append(checks, apphttp.HealthCheck{Name: "postgres", Check: postgresClient.HealthCheck})
		logger.Info().Msg("Database connection established")
	default:
		store := memory.New()
		repos = apphttp.Repositories{
			Users:      store.Users(),
			Projects:   store.Projects(),
			Categories: store.Categories(),
			Tasks:      store.Tasks(),
		}
		logger.Warn().Msg("Using in-memory storage, data is lost on restart")
	}

	bot, err := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.MiniAppURL)
	if err != nil {
		// The API still works without the launch button.
		logger.Error().Err(err).Msg("Telegram bot unavailable")
		bot = nil
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var (
		limiter    ratelimit.Limiter = ratelimit.Noop{}
		joinEvents projectService.JoinPublisher
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		cacheService := cache.NewCacheService(redisClient, "todo")
		repos.Users = userCache.NewCachedRepository(repos.Users, cacheService, cfg.Redis.UserCacheTTL)
		if cfg.Sharing.JoinRateLimit > 0 {
			limiter = ratelimit.NewRedisLimiter(redisClient, "todo", cfg.Sharing.JoinRateLimit, cfg.Sharing.JoinRateWindow)
		}
		checks = append(checks, apphttp.HealthCheck{Name: "redis", Check: redisClient.HealthCheck})
		logger.Info().Msg("Redis connection established")

		if bot.Enabled() {
			joinEvents = workers.NewStreamPublisher(redisClient)
			notifier := notifications.NewService(repos.Projects, repos.Users, bot)
			go workers.NewRedisStreamWorker(redisClient, consumerName(), notifier).Start(workerCtx)
		}
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := apphttp.NewApp(apphttp.Options{
		Config:       cfg,
		Repos:        repos,
		JoinLimiter:  limiter,
		JoinEvents:   joinEvents,
		Bot:          bot,
		HealthChecks: checks,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "todo_worker"
	}
	return "todo_worker_" + host
}
