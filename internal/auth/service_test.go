package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/instacash-tt/instacash/internal/account"
	"github.com/instacash-tt/instacash/internal/session"
)

func setupAuth(t *testing.T, ttl time.Duration) (*Service, *account.Service) {
	t.Helper()
	accounts := account.NewService(account.NewMemoryRepository())
	svc := NewService(accounts, session.NewMemoryStore(), ttl)

	if _, err := accounts.Register(context.Background(), account.RegisterInput{
		Identity:    "alice@example.com",
		DisplayName: "Alice",
		Secret:      "hunter22",
		Kind:        account.KindCustomer,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return svc, accounts
}

func TestLoginIssuesSession(t *testing.T) {
	svc, _ := setupAuth(t, time.Hour)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token == "" || sess.AccountID != "alice_at_example_dot_com" || sess.Role != "customer" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	resolved, err := svc.Resolve(ctx, sess.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.AccountID != sess.AccountID {
		t.Fatalf("resolved wrong session: %+v", resolved)
	}
}

func TestLoginWrongSecretCreatesNoSession(t *testing.T) {
	svc, _ := setupAuth(t, time.Hour)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, account.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential, got %v", err)
	}
}

func TestLoginUnknownIdentity(t *testing.T) {
	svc, _ := setupAuth(t, time.Hour)

	if _, err := svc.Login(context.Background(), "ghost@x", "whatever"); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	svc, _ := setupAuth(t, time.Hour)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Resolve(ctx, sess.Token); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected session gone after logout, got %v", err)
	}
}

func TestExpiredSessionIsNotResolved(t *testing.T) {
	svc, _ := setupAuth(t, -time.Minute)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Resolve(ctx, sess.Token); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}
