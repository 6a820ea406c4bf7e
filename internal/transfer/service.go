package transfer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/instacash-tt/instacash/internal/account"
	"github.com/instacash-tt/instacash/internal/auth"
	"github.com/instacash-tt/instacash/internal/ledger"
	"github.com/instacash-tt/instacash/internal/notification"
	"github.com/instacash-tt/instacash/internal/session"
)

// Service is the single entry point for wallet operations. It validates and
// authorizes each request, then delegates the balance mutation and log append
// to the ledger backend, which performs both as one unit. Collaborator
// failures pass through unwrapped so callers can tell insufficient funds from
// a missing receiver from storage trouble.
type Service struct {
	accounts    *account.Service
	ledger      ledger.Ledger
	auth        *auth.Service
	notifier    notification.Notifier
	logger      *slog.Logger
	seedBalance int64
}

// NewService composes the wallet facade.
func NewService(accounts *account.Service, ledgerBackend ledger.Ledger, authSvc *auth.Service, notifier notification.Notifier, logger *slog.Logger, seedBalance int64) *Service {
	return &Service{
		accounts:    accounts,
		ledger:      ledgerBackend,
		auth:        authSvc,
		notifier:    notifier,
		logger:      logger,
		seedBalance: seedBalance,
	}
}

// RegisterAccount opens an account and its ledger entry with the configured
// seed balance. A ledger failure removes the account record again, so a
// storage blip never strands an identity that can log in but cannot
// transact, and the caller's retry is not rejected as a duplicate.
func (s *Service) RegisterAccount(ctx context.Context, input account.RegisterInput) (account.Account, error) {
	acct, err := s.accounts.Register(ctx, input)
	if err != nil {
		return account.Account{}, err
	}
	if err := s.ledger.CreateAccount(ctx, acct.ID, s.seedBalance); err != nil {
		if rbErr := s.accounts.Remove(ctx, acct.ID); rbErr != nil && s.logger != nil {
			s.logger.Error("roll back account after ledger create failure",
				slog.String("account_id", acct.ID),
				slog.Any("error", rbErr),
			)
		}
		return account.Account{}, err
	}
	if s.logger != nil {
		s.logger.Info("account registered",
			slog.String("account_id", acct.ID),
			slog.String("kind", string(acct.Kind)),
		)
	}
	return acct, nil
}

// Authenticate verifies credentials and returns a session.
func (s *Service) Authenticate(ctx context.Context, identity, secret string) (session.Session, error) {
	return s.auth.Login(ctx, identity, secret)
}

// Logout destroys the caller's session.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.auth.Logout(ctx, token)
}

// RequestTransfer moves amount from the session's account to the account
// registered under toIdentity. The session is re-validated first, the
// receiver resolved across both account kinds, then the ledger performs the
// transfer atomically.
func (s *Service) RequestTransfer(ctx context.Context, token, toIdentity string, amount int64) (ledger.TransactionRecord, error) {
	sess, err := s.auth.Resolve(ctx, token)
	if err != nil {
		return ledger.TransactionRecord{}, err
	}

	receiver, err := s.accounts.Resolve(ctx, toIdentity)
	if err != nil {
		return ledger.TransactionRecord{}, err
	}

	kind := ledger.KindPeerTransfer
	if receiver.Kind == account.KindMerchant {
		kind = ledger.KindMerchantCollection
	}

	rec, err := s.ledger.Transfer(ctx, sess.AccountID, receiver.ID, amount, kind)
	if err != nil {
		return ledger.TransactionRecord{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransferReceived,
			Destination: receiver.Identity,
			Body:        fmt.Sprintf("You received %d from %s", rec.Amount, rec.SenderID),
		})
	}
	return rec, nil
}

// GetHistory returns the session's own transaction records, most recent
// first. A session may only ever read its own history.
func (s *Service) GetHistory(ctx context.Context, token string) ([]ledger.TransactionRecord, error) {
	sess, err := s.auth.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, sess.AccountID)
}

// Balance returns the session's current balance.
func (s *Service) Balance(ctx context.Context, token string) (int64, error) {
	sess, err := s.auth.Resolve(ctx, token)
	if err != nil {
		return 0, err
	}
	return s.ledger.Balance(ctx, sess.AccountID)
}

// Profile returns the account bound to the session.
func (s *Service) Profile(ctx context.Context, token string) (account.Account, error) {
	sess, err := s.auth.Resolve(ctx, token)
	if err != nil {
		return account.Account{}, err
	}
	return s.accounts.Get(ctx, sess.AccountID)
}
