package account

import (
	"context"
	"errors"
	"testing"
)

func TestDeriveID(t *testing.T) {
	got := DeriveID(" Alice.Smith@Example.COM ")
	want := "alice_dot_smith_at_example_dot_com"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRegisterAndVerify(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	acct, err := svc.Register(ctx, RegisterInput{
		Identity:    "alice@example.com",
		DisplayName: "Alice",
		Secret:      "hunter22",
		Kind:        KindCustomer,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if acct.ID != "alice_at_example_dot_com" {
		t.Fatalf("unexpected id %q", acct.ID)
	}
	if string(acct.PasswordHash) == "hunter22" {
		t.Fatalf("secret stored in plaintext")
	}

	verified, err := svc.Verify(ctx, "Alice@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.ID != acct.ID {
		t.Fatalf("expected account %s, got %s", acct.ID, verified.ID)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	input := RegisterInput{Identity: "bob@example.com", DisplayName: "Bob", Secret: "secret1"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register: %v", err)
	}

	// Same mailbox, different casing: still a duplicate.
	input.Identity = "BOB@example.com"
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Identity: "carol@example.com", Secret: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Verify(ctx, "carol@example.com", "wrong-horse"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected invalid credential, got %v", err)
	}
}

func TestVerifyUnknownIdentity(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	if _, err := svc.Verify(context.Background(), "ghost@x", "whatever"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegisterRejectsShortSecret(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	if _, err := svc.Register(context.Background(), RegisterInput{Identity: "dave@example.com", Secret: "123"}); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}
