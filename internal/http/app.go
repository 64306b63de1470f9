package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/open-builders/todo-backend/internal/common/config"
	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/common/middleware"
	"github.com/open-builders/todo-backend/internal/common/ratelimit"
	authhttp "github.com/open-builders/todo-backend/internal/features/auth/delivery/http"
	"github.com/open-builders/todo-backend/internal/features/auth/initdata"
	authservice "github.com/open-builders/todo-backend/internal/features/auth/service"
	"github.com/open-builders/todo-backend/internal/features/auth/session"
	categoryhttp "github.com/open-builders/todo-backend/internal/features/category/delivery/http"
	categoryrepo "github.com/open-builders/todo-backend/internal/features/category/repository"
	categoryservice "github.com/open-builders/todo-backend/internal/features/category/service"
	projecthttp "github.com/open-builders/todo-backend/internal/features/project/delivery/http"
	projectrepo "github.com/open-builders/todo-backend/internal/features/project/repository"
	projectservice "github.com/open-builders/todo-backend/internal/features/project/service"
	"github.com/open-builders/todo-backend/internal/features/project/sharecode"
	taskhttp "github.com/open-builders/todo-backend/internal/features/task/delivery/http"
	taskrepo "github.com/open-builders/todo-backend/internal/features/task/repository"
	taskservice "github.com/open-builders/todo-backend/internal/features/task/service"
	userhttp "github.com/open-builders/todo-backend/internal/features/user/delivery/http"
	userrepo "github.com/open-builders/todo-backend/internal/features/user/repository"
	userservice "github.com/open-builders/todo-backend/internal/features/user/service"
	"github.com/open-builders/todo-backend/internal/platform/telegram"

	_ "github.com/open-builders/todo-backend/docs"
)

const serviceName = "todo-backend"

type Repositories struct {
	Users      userrepo.UserRepository
	Projects   projectrepo.ProjectRepository
	Categories categoryrepo.CategoryRepository
	Tasks      taskrepo.TaskRepository
}

// HealthCheck is probed by /ready.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Options struct {
	Config *config.Config
	Repos  Repositories
	// JoinLimiter defaults to ratelimit.Noop.
	JoinLimiter ratelimit.Limiter
	// JoinEvents receives successful joins; nil disables owner notifications.
	JoinEvents projectservice.JoinPublisher
	// Bot may be nil; the send-button endpoint then answers 503.
	Bot          *telegram.Bot
	HealthChecks []HealthCheck
	// Now overrides the clock of init-data and session checks.
	Now func() time.Time
	// BcryptCost overrides bcrypt.DefaultCost.
	BcryptCost int
}

// NewApp builds the gin engine with every route and middleware wired.
func NewApp(opts Options) *gin.Engine {
	cfg := opts.Config
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	limiter := opts.JoinLimiter
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}

	users := userservice.NewUserService(opts.Repos.Users)

	policy := initdata.RequireAuthDate
	if !cfg.Telegram.RequireAuthDate {
		policy = initdata.AllowMissingAuthDate
	}
	verifier := initdata.NewVerifier(initdata.Options{
		FreshnessWindow: cfg.Telegram.InitDataTTL,
		AuthDatePolicy:  policy,
	})
	sessions := session.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer).WithClock(now)
	auth := authservice.NewAuthService(users, verifier, sessions, authservice.Config{
		BotToken:   cfg.Telegram.BotToken,
		BcryptCost: opts.BcryptCost,
		Now:        now,
	})

	content := projectservice.NewContentLoader(opts.Repos.Categories, opts.Repos.Tasks)
	sharing := projectservice.NewSharingManager(opts.Repos.Projects, sharecode.NewRandom(cfg.Sharing.CodeLength), content,
		projectservice.SharingOptions{
			MaxAttempts:   cfg.Sharing.MaxAttempts,
			AllowRotation: cfg.Sharing.AllowRotation,
			Events:        opts.JoinEvents,
		})
	projects := projectservice.NewProjectService(opts.Repos.Projects, sharing, content)
	categories := categoryservice.NewCategoryService(opts.Repos.Categories, sharing)
	tasks := taskservice.NewTaskService(opts.Repos.Tasks, opts.Repos.Categories, sharing)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.Origins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.InitDataHeader}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	router.Use(cors.New(corsConfig))

	registerHealth(router, opts.HealthChecks)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, errors.NewNotFoundError("route", c.Request.URL.Path))
	})

	api := router.Group("/api")
	api.Use(middleware.OptionalInitData(auth))

	protected := api.Group("")
	protected.Use(middleware.RequireSession(auth, auth))

	authhttp.NewAuthHandler(auth).RegisterRoutes(api, protected)
	userhttp.NewUserHandler(users, projects).RegisterRoutes(protected)
	projecthttp.NewProjectHandler(projects, sharing, middleware.RateLimit(limiter, "join")).RegisterRoutes(protected)
	categoryhttp.NewCategoryHandler(categories, projecthttp.MapError).RegisterRoutes(protected)
	taskhttp.NewTaskHandler(tasks, projecthttp.MapError).RegisterRoutes(protected)
	newTelegramHandler(opts.Bot).RegisterRoutes(protected)

	return router
}

func registerHealth(router *gin.Engine, checks []HealthCheck) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unready",
					"error":  check.Name + " unavailable",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
}
