package shared

import (
	"context"
	"time"
)

// ActionLockStore guards a resource against concurrent write actions
type ActionLockStore interface {
	// Acquire tries to take the lock for key with a TTL.
	// Returns true if the lock was taken, false if it is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops the lock for key. Releasing a lock that is not held is not an error.
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// ActionLockConfig holds configuration for action locking
type ActionLockConfig struct {
	// TTL bounds how long a crashed holder can block other actions
	// Default: 30 seconds
	TTL time.Duration

	// Enabled determines whether locking is enabled
	// Default: true
	Enabled bool
}

// DefaultActionLockConfig returns the default action lock configuration
func DefaultActionLockConfig() ActionLockConfig {
	return ActionLockConfig{
		TTL:     30 * time.Second,
		Enabled: true,
	}
}
