package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/config"
)

// ActionLockStoreFactory creates action lock stores based on configuration
type ActionLockStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ActionLockStoreFactoryOption is a functional option for configuring the factory
type ActionLockStoreFactoryOption func(*ActionLockStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ActionLockStoreFactoryOption {
	return func(f *ActionLockStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory store when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) ActionLockStoreFactoryOption {
	return func(f *ActionLockStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewActionLockStoreFactory creates a new factory
func NewActionLockStoreFactory(cfg config.RedisConfig, opts ...ActionLockStoreFactoryOption) *ActionLockStoreFactory {
	f := &ActionLockStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based action lock store
func (f *ActionLockStoreFactory) CreateRedisStore() (shared.ActionLockStore, error) {
	store, err := NewRedisActionLockStore(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis action lock store: %w", err)
	}
	return store, nil
}

// CreateInMemoryStore creates an in-memory action lock store
// WARNING: In-memory locks are per process; two instances behind a load
// balancer can both send a write for the same request
func (f *ActionLockStoreFactory) CreateInMemoryStore() shared.ActionLockStore {
	return NewInMemoryActionLockStore()
}

// CreateStore uses Redis when it is enabled and reachable, otherwise the
// in-memory store if fallback is allowed
func (f *ActionLockStoreFactory) CreateStore() (shared.ActionLockStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory action lock store")
		return f.CreateInMemoryStore(), nil
	}

	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis action lock store")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for action locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory action lock store. "+
		"Concurrent actions on the same request are only guarded within this instance.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
