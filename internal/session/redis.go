package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:v1:"

// RedisStore keeps sessions in Redis so that several backend instances behind
// one front end agree on who is logged in. Expiry rides on the key TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a connected redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put stores the session with a TTL matching its expiry. A session whose
// expiry is not in the future is an error; silently dropping it would hand
// the caller a token that never resolves.
func (s *RedisStore) Put(ctx context.Context, sess Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("store session: expiry %s is not in the future", sess.ExpiresAt.Format(time.RFC3339))
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get fetches a live session by token.
func (s *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if sess.Expired(time.Now().UTC()) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// Delete destroys the session.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
