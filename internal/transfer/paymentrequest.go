package transfer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/instacash-tt/instacash/internal/account"
	"github.com/instacash-tt/instacash/internal/ledger"
)

// ErrMalformedPaymentRequest indicates a payload that does not parse as a
// payment request.
var ErrMalformedPaymentRequest = errors.New("malformed payment request payload")

const (
	customerRequestPrefix = "PAYMENT_REQUEST"
	merchantRequestPrefix = "MERCHANT_PAYMENT"
)

// PaymentRequest is the payload encoded into the QR codes the front end
// renders: a receiving identity and the amount it asks for.
type PaymentRequest struct {
	Identity string
	Amount   int64
	Merchant bool
}

// Encode renders the pipe-delimited payload.
func (p PaymentRequest) Encode() string {
	prefix := customerRequestPrefix
	if p.Merchant {
		prefix = merchantRequestPrefix
	}
	return fmt.Sprintf("%s|%s|%d", prefix, p.Identity, p.Amount)
}

// ParsePaymentRequest decodes a payload produced by Encode.
func ParsePaymentRequest(payload string) (PaymentRequest, error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return PaymentRequest{}, ErrMalformedPaymentRequest
	}

	var merchant bool
	switch parts[0] {
	case customerRequestPrefix:
	case merchantRequestPrefix:
		merchant = true
	default:
		return PaymentRequest{}, ErrMalformedPaymentRequest
	}

	identity := account.NormalizeIdentity(parts[1])
	if identity == "" {
		return PaymentRequest{}, ErrMalformedPaymentRequest
	}
	amount, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || amount <= 0 {
		return PaymentRequest{}, ErrMalformedPaymentRequest
	}

	return PaymentRequest{Identity: identity, Amount: amount, Merchant: merchant}, nil
}

// CreatePaymentRequest builds a request asking for amount to be paid to the
// session's own account.
func (s *Service) CreatePaymentRequest(ctx context.Context, token string, amount int64) (PaymentRequest, error) {
	if amount <= 0 {
		return PaymentRequest{}, ledger.ErrInvalidAmount
	}
	acct, err := s.Profile(ctx, token)
	if err != nil {
		return PaymentRequest{}, err
	}
	return PaymentRequest{
		Identity: acct.Identity,
		Amount:   amount,
		Merchant: acct.Kind == account.KindMerchant,
	}, nil
}

// PayRequest fulfills a scanned payment request on behalf of the session.
func (s *Service) PayRequest(ctx context.Context, token, payload string) (ledger.TransactionRecord, error) {
	req, err := ParsePaymentRequest(payload)
	if err != nil {
		return ledger.TransactionRecord{}, err
	}
	return s.RequestTransfer(ctx, token, req.Identity, req.Amount)
}
