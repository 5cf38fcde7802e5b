package server

import (
	"log"

	"atlas-be/internal/bootstrap"
	"atlas-be/internal/config"
	"atlas-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // voice uploads
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-FS-Signature, Paddle-Signature, Signature",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, container, cfg)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container, cfg *config.Config) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		dbOK := false
		if c.DB != nil {
			if sqlDB, err := c.DB.DB(); err == nil {
				dbOK = sqlDB.Ping() == nil
			}
		}
		redisOK := c.Redis != nil && c.Redis.Ping(ctx.Context()).Err() == nil

		status := "ok"
		if !dbOK {
			status = "degraded"
		}
		return ctx.JSON(fiber.Map{
			"status":   status,
			"database": dbOK,
			"redis":    redisOK,
			"nats":     c.NatsPublisher != nil,
			"providers": fiber.Map{
				"llm":      cfg.Ai.Provider,
				"deepgram": cfg.Keys.Deepgram != "",
			},
		})
	})

	api := app.Group("/api")

	c.AuthController.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api)
	c.VoiceController.RegisterRoutes(api)
	c.WebhookController.RegisterRoutes(api)
	c.OpsController.RegisterRoutes(api)

	c.NotificationHandler.RegisterRoutes(api)
}
