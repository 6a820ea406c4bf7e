package session

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStorePutGetDelete(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	sess := Session{
		Token:     "tok-1",
		AccountID: "alice_at_example_dot_com",
		Role:      "customer",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccountID != sess.AccountID || got.Role != sess.Role {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	sess := Session{
		Token:     "tok-2",
		AccountID: "bob_at_example_dot_com",
		Role:      "merchant",
		ExpiresAt: time.Now().UTC().Add(time.Minute),
	}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "tok-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestRedisStoreRejectsExpiredPut(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	sess := Session{
		Token:     "tok-3",
		AccountID: "carol_at_example_dot_com",
		Role:      "customer",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	if err := store.Put(ctx, sess); err == nil {
		t.Fatal("expected error for already-expired session")
	}
	if _, err := store.Get(ctx, "tok-3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected nothing stored, got %v", err)
	}
}

func TestRedisStoreUnknownToken(t *testing.T) {
	store, _ := setupRedisStore(t)

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
