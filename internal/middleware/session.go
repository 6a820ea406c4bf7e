package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/instacash-tt/instacash/internal/session"
)

// SessionResolver validates a bearer token against the live session store.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (session.Session, error)
}

// SessionAuth returns a middleware that rejects requests without a live
// session. Handlers downstream read the token via SessionToken and pass it to
// the wallet facade, which re-resolves it per operation.
func SessionAuth(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c)
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		if _, err := resolver.Resolve(c.UserContext(), token); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired session")
		}
		return c.Next()
	}
}

// SessionToken extracts the bearer token from the Authorization header.
func SessionToken(c *fiber.Ctx) string {
	authz := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("Bearer "):])
}
