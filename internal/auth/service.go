package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/instacash-tt/instacash/internal/account"
	"github.com/instacash-tt/instacash/internal/session"
)

// Service verifies credentials and manages the session lifecycle:
// anonymous -> (login) -> authenticated -> (logout | expiry) -> anonymous.
// There is no lockout or attempt limiting here; the optional login rate-limit
// middleware is the only throttle.
type Service struct {
	accounts *account.Service
	sessions session.Store
	ttl      time.Duration
}

// NewService creates an auth service issuing sessions with the given TTL.
func NewService(accounts *account.Service, sessions session.Store, ttl time.Duration) *Service {
	return &Service{accounts: accounts, sessions: sessions, ttl: ttl}
}

// Login verifies the secret and issues a session. Unknown identities fail
// with account.ErrNotFound, hash mismatches with account.ErrInvalidCredential;
// the caller can tell the two apart.
func (s *Service) Login(ctx context.Context, identity, secret string) (session.Session, error) {
	acct, err := s.accounts.Verify(ctx, identity, secret)
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{
		Token:     uuid.NewString(),
		AccountID: acct.ID,
		Role:      string(acct.Kind),
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

// Resolve returns the live session for a token.
func (s *Service) Resolve(ctx context.Context, token string) (session.Session, error) {
	return s.sessions.Get(ctx, token)
}

// Logout destroys the session. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
