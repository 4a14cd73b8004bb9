package directory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = shared.NewDomainError("NOT_FOUND", "Directory session not found")

// DefaultSessionTTL is how long an idle session is kept
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	controller *Controller
	lastSeen   time.Time
}

// SessionManager keeps one Controller per UI session and expires idle ones
type SessionManager struct {
	newController func() *Controller
	ttl           time.Duration
	logger        *zap.Logger
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewSessionManager creates a SessionManager; newController builds each session's controller
func NewSessionManager(newController func() *Controller, ttl time.Duration, logger *zap.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		newController: newController,
		ttl:           ttl,
		logger:        logger,
		now:           time.Now,
		sessions:      make(map[string]*session),
		stop:          make(chan struct{}),
	}
}

// Create starts a new session and returns its id
func (m *SessionManager) Create() (string, *Controller) {
	id := uuid.NewString()
	ctrl := m.newController()

	m.mu.Lock()
	m.sessions[id] = &session{controller: ctrl, lastSeen: m.now()}
	m.mu.Unlock()

	m.logger.Debug("Directory session created", zap.String("session_id", id))
	return id, ctrl
}

// Get returns the session's controller and marks it used
func (m *SessionManager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.now().Sub(s.lastSeen) > m.ttl {
		delete(m.sessions, id)
		s.controller.Close()
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return s.controller, nil
}

// Delete closes and removes a session
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.controller.Close()
	return nil
}

// Len returns the number of live sessions
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
func (m *SessionManager) Sweep() int {
	m.mu.Lock()
	var expired []*session
	now := m.now()
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.ttl {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.controller.Close()
	}
	if len(expired) > 0 {
		m.logger.Debug("Expired directory sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Start sweeps expired sessions every interval until ctx is done or Stop is called
func (m *SessionManager) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// Stop ends the sweeper and closes every session
func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	m.wg.Wait()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.controller.Close()
	}
}
