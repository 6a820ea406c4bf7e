package transfer

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/instacash-tt/instacash/internal/account"
	"github.com/instacash-tt/instacash/internal/ledger"
	"github.com/instacash-tt/instacash/internal/middleware"
	"github.com/instacash-tt/instacash/internal/session"
	"github.com/instacash-tt/instacash/internal/storage"
)

// Handler exposes the wallet facade over HTTP.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	ToIdentity string `json:"to_identity"`
	Amount     int64  `json:"amount"`
	Payload    string `json:"payload"`
}

type recordResponse struct {
	ID         int64  `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Amount     int64  `json:"amount"`
	Kind       string `json:"kind"`
	CreatedAt  string `json:"created_at"`
}

func toRecordResponse(rec ledger.TransactionRecord) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		SenderID:   rec.SenderID,
		ReceiverID: rec.ReceiverID,
		Amount:     rec.Amount,
		Kind:       rec.Kind,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339Nano),
	}
}

// Transfer moves funds from the session's account, either to an explicit
// identity or to the target of a scanned payment request payload.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token := middleware.SessionToken(c)

	var (
		rec ledger.TransactionRecord
		err error
	)
	if req.Payload != "" {
		rec, err = h.service.PayRequest(c.UserContext(), token, req.Payload)
	} else {
		rec, err = h.service.RequestTransfer(c.UserContext(), token, req.ToIdentity, req.Amount)
	}
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toRecordResponse(rec))
}

// History lists the session's transactions, most recent first.
func (h *Handler) History(c *fiber.Ctx) error {
	records, err := h.service.GetHistory(c.UserContext(), middleware.SessionToken(c))
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

// Balance returns the session's current balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	balance, err := h.service.Balance(c.UserContext(), middleware.SessionToken(c))
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"balance": balance})
}

// Me returns the session's account profile. The credential hash stays server-side.
func (h *Handler) Me(c *fiber.Ctx) error {
	acct, err := h.service.Profile(c.UserContext(), middleware.SessionToken(c))
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id":   acct.ID,
		"identity":     acct.Identity,
		"display_name": acct.DisplayName,
		"kind":         acct.Kind,
		"created_at":   acct.CreatedAt,
	})
}

type paymentRequestRequest struct {
	Amount int64 `json:"amount"`
}

// PaymentRequest encodes a payload asking for funds into the session's account.
func (h *Handler) PaymentRequest(c *fiber.Ctx) error {
	var req paymentRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	pr, err := h.service.CreatePaymentRequest(c.UserContext(), middleware.SessionToken(c), req.Amount)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"identity": pr.Identity,
		"amount":   pr.Amount,
		"merchant": pr.Merchant,
		"payload":  pr.Encode(),
	})
}

// statusFor maps the wallet error taxonomy onto HTTP status codes without
// collapsing distinct failures into one.
func statusFor(err error) int {
	switch {
	case errors.Is(err, account.ErrNotFound), errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrDuplicate), errors.Is(err, ledger.ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, account.ErrInvalidCredential), errors.Is(err, session.ErrNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSelfTransfer),
		errors.Is(err, ErrMalformedPaymentRequest):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrWrite), errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
