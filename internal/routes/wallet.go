package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/instacash-tt/instacash/internal/transfer"
)

// RegisterWalletRoutes wires the session-protected wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, h *transfer.Handler) {
	r.Get("/me", h.Me)
	r.Get("/balance", h.Balance)
	r.Get("/history", h.History)
	r.Post("/transfers", h.Transfer)
	r.Post("/payment-requests", h.PaymentRequest)
}
