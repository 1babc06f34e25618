package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/session"
)

// IdentityKey is the Locals key under which the authenticated member's
// identite is stored.
const IdentityKey = "identite"

// RequireSession validates the bearer access token and puts the
// member's identity on the request context.
func RequireSession(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		identity, err := sessions.IdentityFromAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid access token")
		}
		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}
