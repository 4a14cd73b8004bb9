package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestManager(t *testing.T) (*SessionManager, *time.Time) {
	t.Helper()
	dir := newFakeDirectory(2)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	timers := &fakeTimers{}
	m := NewSessionManager(func() *Controller {
		return NewController(dir, Options{Timers: timers.AfterFunc})
	}, 30*time.Minute, zaptest.NewLogger(t))
	m.now = func() time.Time { return now }
	t.Cleanup(m.Stop)
	return m, &now
}

func TestSessionManager_Lifecycle(t *testing.T) {
	m, _ := newTestManager(t)

	id, ctrl := m.Create()
	require.NotEmpty(t, id)
	require.NotNil(t, ctrl)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Same(t, ctrl, got)

	require.NoError(t, m.Delete(id))
	_, err = m.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(id), ErrSessionNotFound)
}

func TestSessionManager_SessionsAreIndependent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, a := m.Create()
	_, b := m.Create()

	a.SetMilkType(ctx, "Cow")
	assert.Equal(t, "Cow", a.State().Query.MilkType)
	assert.Equal(t, "", b.State().Query.MilkType)
}

func TestSessionManager_Expiry(t *testing.T) {
	m, now := newTestManager(t)

	idle, _ := m.Create()
	active, _ := m.Create()

	*now = now.Add(20 * time.Minute)
	_, err := m.Get(active)
	require.NoError(t, err)

	*now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())

	_, err = m.Get(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(active)
	assert.NoError(t, err)

	*now = now.Add(31 * time.Minute)
	_, err = m.Get(active)
	assert.ErrorIs(t, err, ErrSessionNotFound, "expired on access")
}

func TestSessionManager_StartStop(t *testing.T) {
	m, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Create()
	m.Start(ctx, 10*time.Millisecond)
	m.Stop()
	m.Stop()
	assert.Equal(t, 0, m.Len())
}
