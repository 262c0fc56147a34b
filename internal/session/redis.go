package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/proplex/proplex-admin/internal/model"
)

// RedisClient is the subset of go-redis client methods used by RedisStore.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps sessions in Redis, letting several dashboard instances
// share sign-ins.
type RedisStore struct {
	client RedisClient
	prefix string
}

// NewRedisStore creates a Redis-backed store. Keys are namespaced by prefix.
func NewRedisStore(client RedisClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// redisSession is the stored form; model.Session hides the token from JSON.
type redisSession struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	Modules   []string   `json:"modules"`
	Locale    string     `json:"locale"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

func (s *RedisStore) sessionKey(id string) string  { return s.prefix + "session:" + id }
func (s *RedisStore) revokedKey(jti string) string { return s.prefix + "revoked:" + jti }

func (s *RedisStore) Save(ctx context.Context, sess *model.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}
	data, err := json.Marshal(redisSession{
		ID:        sess.ID,
		Token:     sess.Token,
		User:      sess.User,
		Modules:   sess.Modules,
		Locale:    sess.Locale,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.client.Set(ctx, s.sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	var rs redisSession
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &model.Session{
		ID:        rs.ID,
		Token:     rs.Token,
		User:      rs.User,
		Modules:   rs.Modules,
		Locale:    rs.Locale,
		CreatedAt: rs.CreatedAt,
		ExpiresAt: rs.ExpiresAt,
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.revokedKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.revokedKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return n > 0, nil
}
