package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/instacash-tt/instacash/internal/account"
	"github.com/instacash-tt/instacash/internal/storage"
	"github.com/instacash-tt/instacash/internal/transfer"
)

// RegisterAccountRoutes wires the public registration endpoint.
func RegisterAccountRoutes(r fiber.Router, wallet *transfer.Service, logger *slog.Logger) {
	r.Post("/accounts/register", func(c *fiber.Ctx) error {
		var req struct {
			Identity    string `json:"identity"`
			DisplayName string `json:"display_name"`
			Secret      string `json:"secret"`
			Kind        string `json:"kind"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		acct, err := wallet.RegisterAccount(c.UserContext(), account.RegisterInput{
			Identity:    req.Identity,
			DisplayName: req.DisplayName,
			Secret:      req.Secret,
			Kind:        account.Kind(req.Kind),
		})
		if err != nil {
			switch {
			case errors.Is(err, account.ErrDuplicate):
				return fiber.NewError(http.StatusConflict, err.Error())
			case errors.Is(err, storage.ErrWrite), errors.Is(err, storage.ErrUnavailable):
				return fiber.NewError(http.StatusServiceUnavailable, err.Error())
			default:
				return fiber.NewError(http.StatusBadRequest, err.Error())
			}
		}

		if logger != nil {
			logger.Info("account registered",
				slog.String("account_id", acct.ID),
				slog.String("kind", string(acct.Kind)),
				slog.Int("status", http.StatusCreated),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"account_id":   acct.ID,
			"identity":     acct.Identity,
			"display_name": acct.DisplayName,
			"kind":         acct.Kind,
		})
	})
}
