// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reverie/internal/cache"
	"reverie/internal/config"
	"reverie/internal/database"
	"reverie/internal/featureflags"
	"reverie/internal/feed"
	"reverie/internal/functions"
	"reverie/internal/gateway"
	"reverie/internal/media"
	"reverie/internal/middleware"
	"reverie/internal/models"
	"reverie/internal/notifications"
	"reverie/internal/repository"
	"reverie/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	logger         *slog.Logger
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo         repository.UserRepository
	dreamRepo        repository.DreamRepository
	commentRepo      repository.CommentRepository
	socialRepo       repository.SocialRepository
	tagRepo          repository.TagRepository
	notifRepo        repository.NotificationRepository
	learningRepo     repository.LearningRepository
	subscriptionRepo repository.SubscriptionRepository

	dreamService        *service.DreamService
	commentService      *service.CommentService
	socialService       *service.SocialService
	userService         *service.UserService
	notificationService *service.NotificationService
	learningService     *service.LearningService
	subscriptionService *service.SubscriptionService
	analysisService     *service.AnalysisService

	gateway      *gateway.Gateway
	assembler    *feed.Assembler
	sessions     *sessionManager
	functions    *functions.Client
	uploader     *media.Uploader
	featureFlags *featureflags.Manager

	notifier *notifications.Notifier
	hub      *notifications.Hub
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		logger:         slog.Default(),
		promMiddleware: middleware.InitMetrics("reverie-api"),

		userRepo:         repository.NewUserRepository(db),
		dreamRepo:        repository.NewDreamRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		socialRepo:       repository.NewSocialRepository(db),
		tagRepo:          repository.NewTagRepository(db),
		notifRepo:        repository.NewNotificationRepository(db),
		learningRepo:     repository.NewLearningRepository(db),
		subscriptionRepo: repository.NewSubscriptionRepository(db),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
	}

	server.featureFlags = featureflags.NewManager(cfg.FeatureFlags)
	server.functions = functions.NewClient(cfg.FunctionsBaseURL, cfg.FunctionsAPIKey, server.logger)
	server.uploader = media.NewUploader(media.NewDiskStore(cfg.MediaDir), server.logger)

	server.dreamService = service.NewDreamService(server.dreamRepo, server.tagRepo, server.notifRepo, server.notifier)
	server.commentService = service.NewCommentService(server.commentRepo, server.dreamRepo, server.notifRepo, server.notifier)
	server.socialService = service.NewSocialService(server.socialRepo, server.userRepo, server.notifRepo, server.notifier)
	server.userService = service.NewUserService(server.userRepo)
	server.notificationService = service.NewNotificationService(server.notifRepo)
	server.learningService = service.NewLearningService(server.learningRepo)
	server.subscriptionService = service.NewSubscriptionService(server.subscriptionRepo, server.functions)
	server.analysisService = service.NewAnalysisService(server.dreamService, server.functions)

	server.gateway = gateway.New(
		server.dreamRepo, server.userRepo, server.socialRepo,
		server.dreamService, server.commentService, server.socialService,
	)
	server.assembler = feed.NewAssembler(server.gateway, server.logger)
	server.sessions = newSessionManager(server.gateway, server.logger)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Reverie Backend Metrics Dashboard",
	}))

	// Uploaded dream imagery and audio
	app.Static("/media", s.config.MediaDir)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", middleware.AuthRequired, s.Logout)

	// Public browse routes
	publicFeed := api.Group("/feed")
	publicFeed.Get("/recent", s.RecentFeed)
	publicFeed.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchFeed)

	api.Get("/tags", s.GetTags)
	api.Get("/announcements", s.GetAnnouncements)
	api.Get("/dreams/:id/comments", s.GetComments)
	api.Get("/dreams/:id", s.GetDream)
	api.Get("/users/:id/dreams", s.GetUserDreams)
	api.Get("/users/:id", s.GetUserProfile)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	protected.Get("/feed/following", s.FollowingFeed)
	protected.Get("/flags", s.GetFeatureFlags)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/", s.SearchUsers)

	// Dream routes
	dreams := protected.Group("/dreams")
	dreams.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_dream"), s.CreateDream)
	// Specific /:id/:resource routes BEFORE generic /:id routes
	dreams.Post("/:id/like", s.ToggleDreamLike)
	dreams.Post("/:id/visibility", s.ToggleDreamVisibility)
	dreams.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	dreams.Put("/:id/comments/:commentId", s.UpdateComment)
	dreams.Delete("/:id/comments/:commentId", s.DeleteComment)
	dreams.Post("/:id/analysis", middleware.RateLimit(
		s.redis, 5, time.Minute, "analysis"), s.AnalyzeDream)
	dreams.Put("/:id", s.UpdateDream)
	dreams.Delete("/:id", s.DeleteDream)

	// Social routes
	social := protected.Group("/social")
	social.Post("/follow/:userId", middleware.RateLimit(
		s.redis, 30, 5*time.Minute, "follow"), s.ToggleFollow)
	social.Get("/followers", s.GetFollowers)
	social.Get("/following", s.GetFollowing)
	social.Post("/block/:userId", s.BlockUser)
	social.Delete("/block/:userId", s.UnblockUser)
	social.Get("/blocked", s.GetBlockedUsers)

	// Notification routes
	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadCount)
	notifs.Post("/read", s.MarkNotificationsRead)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)

	// Learning routes
	learning := protected.Group("/learning")
	learning.Get("/paths", s.GetLearningPaths)
	learning.Post("/steps/:stepId/complete", s.CompleteLearningStep)

	// Subscription routes
	subs := protected.Group("/subscriptions")
	subs.Post("/checkout", middleware.RateLimit(
		s.redis, 5, time.Minute, "checkout"), s.StartCheckout)
	subs.Get("/me", s.GetMySubscription)
	subs.Delete("/me", s.CancelSubscription)
	api.Post("/subscriptions/webhook", s.SubscriptionWebhook)

	// Media upload routes
	mediaGroup := protected.Group("/media")
	mediaGroup.Post("/image", middleware.RateLimit(
		s.redis, 10, time.Minute, "upload_image"), s.UploadImage)
	mediaGroup.Post("/audio", middleware.RateLimit(
		s.redis, 10, time.Minute, "upload_audio"), s.UploadAudio)

	// WebSocket endpoint for live notifications
	api.Get("/ws", middleware.WebSocketAuthRequired, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// SyncLearningCatalog loads the learning path catalog from the configured
// file into the database. Called once at startup; a missing file is an
// error so a bad deploy fails loudly.
func (s *Server) SyncLearningCatalog(ctx context.Context) error {
	if s.config.LearningPathsFile == "" {
		return nil
	}
	return s.learningService.SyncCatalogFromFile(ctx, s.config.LearningPathsFile)
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   "Reverie API",
		BodyLimit: 20 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			s.logger.Error("unhandled handler error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				s.logger.Error("failed to start notification hub wiring", slog.String("error", err.Error()))
			}
		}()
	}

	s.logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			s.logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			s.logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
		}
	}

	s.sessions.endAll()

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			s.logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			s.logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
