package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
)

// InMemoryActionLockStore implements ActionLockStore using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryActionLockStore struct {
	mu        sync.Mutex
	locks     map[string]time.Time // key -> expiry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryActionLockStore creates a new in-memory action lock store
// It starts a background goroutine to clean up expired locks
func NewInMemoryActionLockStore() *InMemoryActionLockStore {
	store := &InMemoryActionLockStore{
		locks:    make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Acquire takes the lock unless an unexpired holder exists
func (s *InMemoryActionLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiresAt, held := s.locks[key]; held && now.Before(expiresAt) {
		return false, nil
	}
	s.locks[key] = now.Add(ttl)
	return true, nil
}

// Release drops the lock
func (s *InMemoryActionLockStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (s *InMemoryActionLockStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryActionLockStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryActionLockStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, expiresAt := range s.locks {
		if !now.Before(expiresAt) {
			delete(s.locks, key)
		}
	}
}

// Size returns the number of held or expired-but-uncollected locks
func (s *InMemoryActionLockStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

// Ensure InMemoryActionLockStore implements ActionLockStore
var _ shared.ActionLockStore = (*InMemoryActionLockStore)(nil)
