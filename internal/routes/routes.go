package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/handlers"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/middleware"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/session"
)

func Setup(app *fiber.App, h *handlers.Handler, sessions *session.Manager, authLimiter *middleware.IPRateLimiter) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	auth := api.Group("/auth", authLimiter.Handler())
	auth.Post("/signup", h.Signup)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)

	api.Post("/session/restore", authLimiter.Handler(), h.RestoreSession)

	members := api.Group("/members")
	members.Get("/me", middleware.RequireSession(sessions), h.Me)
	members.Get("/write-failures", h.WriteFailures)
}
