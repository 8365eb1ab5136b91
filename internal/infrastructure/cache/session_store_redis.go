package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/onboarding"
	"github.com/marketplace/portal/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultSessionPrefix = "portal:onboarding:"

// RedisSessionStore keeps onboarding sessions in Redis so any portal
// instance can serve the next wizard step
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ onboarding.SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore connects and pings Redis
func NewRedisSessionStore(cfg config.RedisConfig) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSessionStoreWithClient(client, ""), nil
}

// NewRedisSessionStoreWithClient wraps an existing client
func NewRedisSessionStoreWithClient(client *redis.Client, keyPrefix string) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = defaultSessionPrefix
	}
	return &RedisSessionStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisSessionStore) key(id uuid.UUID) string {
	return s.keyPrefix + id.String()
}

// Save stores the session and resets its TTL
func (s *RedisSessionStore) Save(ctx context.Context, sess *onboarding.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode onboarding session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save onboarding session: %w", err)
	}
	return nil
}

// Get loads a session; onboarding.ErrSessionNotFound when missing or expired
func (s *RedisSessionStore) Get(ctx context.Context, id uuid.UUID) (*onboarding.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, onboarding.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding session: %w", err)
	}
	var sess onboarding.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode onboarding session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session
func (s *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete onboarding session: %w", err)
	}
	return nil
}

// Ping checks connectivity for the health endpoint
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
