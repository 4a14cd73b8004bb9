package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
)

const defaultLockPrefix = "dairy:action-lock:"

// releaseScript deletes the key only while this store still owns it, so an
// expired lock re-taken by another instance is never released from here.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisActionLockStore implements ActionLockStore using Redis
// This is suitable for deployments where several dashboard instances
// can receive review actions for the same request
type RedisActionLockStore struct {
	client    *redis.Client
	keyPrefix string
	owner     string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisActionLockStore creates a new Redis-based action lock store
func NewRedisActionLockStore(cfg RedisConfig) (*RedisActionLockStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisActionLockStoreWithClient(client, ""), nil
}

// NewRedisActionLockStoreWithClient creates a store with an existing Redis client
func NewRedisActionLockStoreWithClient(client *redis.Client, keyPrefix string) *RedisActionLockStore {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisActionLockStore{
		client:    client,
		keyPrefix: keyPrefix,
		owner:     uuid.NewString(),
	}
}

// Acquire takes the lock with SET NX and a TTL in one atomic operation
func (s *RedisActionLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, s.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire action lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock if this store holds it
func (s *RedisActionLockStore) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.keyPrefix + key}, s.owner).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release action lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisActionLockStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisActionLockStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisActionLockStore implements ActionLockStore
var _ shared.ActionLockStore = (*RedisActionLockStore)(nil)
