package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/marketplace/portal/internal/domain/onboarding"
	"github.com/marketplace/portal/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SessionStore is an onboarding store the server can close on shutdown
type SessionStore interface {
	onboarding.SessionStore
	io.Closer
}

// SessionStoreFactory picks Redis when reachable and memory otherwise
type SessionStoreFactory struct {
	redisConfig   config.RedisConfig
	logger        *zap.Logger
	allowFallback bool
}

// SessionStoreFactoryOption configures the factory
type SessionStoreFactoryOption func(*SessionStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a Redis outage at startup falls
// back to process memory. Default true.
func WithInMemoryFallback(allow bool) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.allowFallback = allow
	}
}

// NewSessionStoreFactory creates a factory
func NewSessionStoreFactory(cfg config.RedisConfig, opts ...SessionStoreFactoryOption) *SessionStoreFactory {
	f := &SessionStoreFactory{
		redisConfig:   cfg,
		logger:        zap.NewNop(),
		allowFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store, or an in-memory store when Redis is
// unavailable and fallback is allowed
func (f *SessionStoreFactory) CreateStore() (SessionStore, error) {
	store, err := NewRedisSessionStore(f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis onboarding session store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}
	if !f.allowFallback {
		return nil, fmt.Errorf("redis required for onboarding sessions but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, onboarding sessions will be kept in memory. "+
		"Wizard progress is lost on restart and not shared between instances.",
		zap.Error(err),
	)
	return NewInMemorySessionStore(0), nil
}

// Pinger is implemented by stores that can report connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}
