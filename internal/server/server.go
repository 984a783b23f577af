// Package server contains the HTTP handlers and routing for the portfolio API.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"atelier/internal/blob"
	"atelier/internal/cache"
	"atelier/internal/config"
	"atelier/internal/database"
	"atelier/internal/featureflags"
	"atelier/internal/middleware"
	"atelier/internal/models"
	"atelier/internal/observability"
	"atelier/internal/repository"
	"atelier/internal/service"

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

	blobs blob.Store
	flags *featureflags.Set

	tracingShutdown func(context.Context) error

	postService       *service.PostService
	projectService    *service.ProjectService
	experienceService *service.ExperienceService
	skillService      *service.SkillService
	coreService       *service.CoreService
	authService       *service.AuthService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	store := blob.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL, int64(cfg.MaxUploadSizeMB)<<20)

	server, err := NewServerWithDeps(cfg, db, redisClient, store)
	if err != nil {
		return nil, err
	}

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "atelier-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing setup failed: %w", err)
	}
	server.tracingShutdown = shutdown

	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store blob.Store) (*Server, error) {
	middleware.InitMiddleware(cfg)

	postRepo := repository.NewPostRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	experienceRepo := repository.NewExperienceRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	coreRepo := repository.NewCoreRepository(db)
	userRepo := repository.NewUserRepository(db)

	prom := middleware.InitMetrics("atelier-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		blobs:          store,
		flags:          featureflags.Parse(cfg.FeatureFlags),
	}
	server.postService = service.NewPostService(db, postRepo, store, cfg.MaxUploadFiles)
	server.projectService = service.NewProjectService(db, projectRepo, store, cfg.MaxUploadFiles)
	server.experienceService = service.NewExperienceService(db, experienceRepo)
	server.skillService = service.NewSkillService(skillRepo)
	server.coreService = service.NewCoreService(coreRepo, store)
	server.authService = service.NewAuthService(userRepo, cfg)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
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

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if s.flags.Enabled(featureflags.Dashboard, true) {
		api.Get("/metrics/dashboard", monitor.New(monitor.Config{
			Title: "Atelier Backend Metrics Dashboard",
		}))
	}

	auth := api.Group("/auth")
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public read routes
	api.Get("/posts", s.GetPosts)
	api.Get("/posts/:slug/images", s.GetPostImages)
	api.Get("/posts/:slug/links", s.GetPostLinks)
	api.Get("/posts/:slug", s.GetPost)
	api.Get("/projects", s.GetProjects)
	api.Get("/projects/:id/links", s.GetProjectLinks)
	api.Get("/projects/:id/media", s.GetProjectMedia)
	api.Get("/projects/:id/skills", s.GetProjectSkills)
	api.Get("/projects/:id", s.GetProject)
	api.Get("/experiences", s.GetExperiences)
	api.Get("/experiences/:id", s.GetExperience)
	api.Get("/skills", s.GetSkills)
	api.Get("/skills/references", s.GetSkillReferences)
	api.Get("/hero", s.GetHero)
	api.Get("/about", s.GetAbout)
	if s.flags.Enabled(featureflags.ContactForm, true) {
		api.Post("/contact", middleware.RateLimit(
			s.redis, 5, 10*time.Minute, "contact"), s.SubmitContact)
	}

	// Write routes require a superuser token.
	admin := api.Group("", middleware.AuthRequired, middleware.SuperuserRequired)

	posts := admin.Group("/posts")
	posts.Post("/", s.CreatePost)
	// Specific /:slug/:resource routes before generic /:slug
	posts.Post("/:slug/links", s.AddPostLink)
	posts.Put("/:slug/links/:linkId", s.UpdatePostLink)
	posts.Delete("/:slug/links/:linkId", s.DeletePostLink)
	posts.Post("/:slug/images", s.AddPostImages)
	posts.Put("/:slug/images/:imageId", s.UpdatePostImage)
	posts.Delete("/:slug/images/:imageId", s.DeletePostImage)
	posts.Put("/:slug", s.UpdatePost)
	posts.Delete("/:slug", s.DeletePost)

	projects := admin.Group("/projects")
	projects.Post("/", s.CreateProject)
	projects.Post("/:id/links", s.AddProjectLink)
	projects.Put("/:id/links/:linkId", s.UpdateProjectLink)
	projects.Delete("/:id/links/:linkId", s.DeleteProjectLink)
	projects.Post("/:id/media", s.AddProjectMedia)
	projects.Put("/:id/media/:mediaId", s.UpdateProjectMedia)
	projects.Delete("/:id/media/:mediaId", s.DeleteProjectMedia)
	projects.Post("/:id/skills", s.AddProjectSkill)
	projects.Delete("/:id/skills/:refId", s.DeleteProjectSkill)
	projects.Put("/:id", s.UpdateProject)
	projects.Delete("/:id", s.DeleteProject)

	experiences := admin.Group("/experiences")
	experiences.Post("/", s.CreateExperience)
	experiences.Post("/:id/links", s.AddExperienceLink)
	experiences.Delete("/:id/links/:linkId", s.DeleteExperienceLink)
	experiences.Put("/:id", s.UpdateExperience)
	experiences.Delete("/:id", s.DeleteExperience)

	skills := admin.Group("/skills")
	skills.Post("/", s.CreateSkill)
	skills.Delete("/:id", s.DeleteSkill)
	skills.Post("/references", s.CreateSkillReference)

	admin.Put("/hero", s.UpdateHero)
	admin.Put("/about", s.UpdateAbout)
	contact := admin.Group("/contact")
	contact.Get("/", s.GetContactMessages)
	contact.Post("/:id/read", s.MarkContactRead)
	contact.Delete("/:id", s.DeleteContactMessage)
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

	// Redis is a cache here, not a dependency: its absence degrades
	// latency, not correctness.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Atelier API",
		BodyLimit: (s.config.MaxUploadSizeMB + 1) << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	if s.tracingShutdown != nil {
		if terr := s.tracingShutdown(ctx); terr != nil {
			log.Printf("error shutting down tracing: %v", terr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
