package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/instacash-tt/instacash/internal/account"
	"github.com/instacash-tt/instacash/internal/middleware"
)

// Handler exposes login/logout endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// Login verifies credentials and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.Login(c.UserContext(), req.Identity, req.Secret)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, account.ErrInvalidCredential):
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"token":      sess.Token,
		"account_id": sess.AccountID,
		"role":       sess.Role,
		"expires_at": sess.ExpiresAt,
	})
}

// Logout destroys the caller's session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token := middleware.SessionToken(c)
	if token == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
	}
	if err := h.svc.Logout(c.UserContext(), token); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}
