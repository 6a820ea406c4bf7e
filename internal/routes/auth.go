package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/instacash-tt/instacash/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints. The rate limiter is
// always in the chain; it no-ops without a cache.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/login", rateLimiter, h.Login)
	group.Post("/logout", h.Logout)
}
