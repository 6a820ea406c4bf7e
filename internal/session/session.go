package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the token maps to no live session: never issued,
// expired, or destroyed by logout.
var ErrNotFound = errors.New("session not found")

// Session is a transient authenticated identity bound to one account. It is
// created at login and destroyed at logout; it is never written to the
// wallet's durable state.
type Session struct {
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store holds live sessions.
type Store interface {
	Put(ctx context.Context, sess Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}
