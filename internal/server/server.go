package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/config"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/handlers"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/middleware"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/routes"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/session"
)

// New initializes the Fiber application with config, middlewares, and routes.
func New(cfg *config.Config, h *handlers.Handler, sessions *session.Manager, logger *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.App.ReadTimeout.Std(),
		WriteTimeout: cfg.App.WriteTimeout.Std(),
		IdleTimeout:  cfg.App.IdleTimeout.Std(),
	})

	app.Use(cors.New())
	app.Use(middleware.RequestLogger(logger))

	authLimiter := middleware.NewIPRateLimiter(cfg.Security.AuthRateLimitPerMinute, logger)
	routes.Setup(app, h, sessions, authLimiter)

	return app
}
