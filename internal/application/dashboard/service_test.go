package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var may10 = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*DashboardService, *fakeDirectory, *fakeSummaries, *fakeUpdates) {
	t.Helper()
	dir, sums, ups := healthySources()
	resolver := dashboard.NewDateRangeResolver(fixedClock(may10), dashboard.WithLocation(time.UTC))
	svc := NewDashboardService(resolver, NewMetricAggregator(dir, sums, ups), zaptest.NewLogger(t))
	return svc, dir, sums, ups
}

func TestDashboardService_CurrentBeforeAggregation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, ok := svc.Current()
	assert.False(t, ok)
}

func TestDashboardService_SelectWindow(t *testing.T) {
	svc, _, sums, _ := newTestService(t)

	view, err := svc.SelectWindow(context.Background(), dashboard.WindowThisMonth, nil)
	require.NoError(t, err)

	assert.Equal(t, dashboard.WindowThisMonth, view.Window.Mode)
	assert.Equal(t, "2024-05-01", view.Window.StartParam())
	assert.Equal(t, "2024-05-10", view.Window.EndParam())
	assert.Equal(t, "2024-05-01", sums.stockWindow.StartParam())
	assert.Equal(t, "100L", view.Metrics.TotalStock)
	require.Len(t, view.Pending, 1)
	assert.Equal(t, "+1", view.Pending[0].DifferenceLabel)

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, view.Window, current.Window)
}

func TestDashboardService_SelectWindow_Invalid(t *testing.T) {
	svc, dir, _, _ := newTestService(t)

	_, err := svc.SelectWindow(context.Background(), dashboard.WindowCustom, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dashboard.ErrCustomRangeRequired)

	_, err = svc.SelectWindow(context.Background(), dashboard.WindowCustom, &dashboard.DateRange{
		Start: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_WINDOW", domainErr.Code)

	assert.Equal(t, 0, dir.calls, "no fetch for an invalid window")
	_, ok := svc.Current()
	assert.False(t, ok)
}

func TestDashboardService_RefreshDefaultsToToday(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	view, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dashboard.WindowToday, view.Window.Mode)
	assert.Equal(t, "2024-05-10", view.Window.StartParam())
}

func TestDashboardService_RefreshKeepsCustomWindow(t *testing.T) {
	svc, dir, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SelectWindow(ctx, dashboard.WindowCustom, &dashboard.DateRange{
		Start: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	dir.customers = append(dir.customers, customer.Customer{ID: "c3", IsActive: true})
	view, err := svc.Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, dashboard.WindowCustom, view.Window.Mode)
	assert.Equal(t, "2024-04-01", view.Window.StartParam())
	assert.Equal(t, "2024-04-03", view.Window.EndParam())
	assert.Equal(t, 2, view.Metrics.ActiveCustomers)
}

func TestDashboardService_CurrentIsACopy(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	view, _ := svc.Current()
	view.Snapshot.Customers[0].Name = "changed"
	view.Snapshot.QuantityUpdates[0].Status = quantityupdate.StatusAccepted

	again, _ := svc.Current()
	assert.Equal(t, "Asha", again.Snapshot.Customers[0].Name)
	assert.Equal(t, quantityupdate.StatusPending, again.Snapshot.QuantityUpdates[0].Status)
}

func TestDashboardService_FindRequest(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, ok := svc.FindRequest("q1")
	assert.False(t, ok)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	req, ok := svc.FindRequest("q1")
	require.True(t, ok)
	assert.Equal(t, float64(3), req.NewQuantity)
}

// blockingAggregator releases each Aggregate call through its own channel
type blockingAggregator struct {
	mu      sync.Mutex
	release map[dashboard.WindowMode]chan struct{}
	started chan dashboard.WindowMode
}

func (b *blockingAggregator) Aggregate(ctx context.Context, window dashboard.TimeWindow) dashboard.Snapshot {
	b.mu.Lock()
	ch := b.release[window.Mode]
	b.mu.Unlock()
	b.started <- window.Mode
	<-ch
	return dashboard.NewSnapshot(window)
}

func TestDashboardService_SupersededAggregationDiscarded(t *testing.T) {
	agg := &blockingAggregator{
		release: map[dashboard.WindowMode]chan struct{}{
			dashboard.WindowToday:     make(chan struct{}),
			dashboard.WindowYesterday: make(chan struct{}),
		},
		started: make(chan dashboard.WindowMode, 2),
	}
	resolver := dashboard.NewDateRangeResolver(fixedClock(may10), dashboard.WithLocation(time.UTC))
	svc := NewDashboardService(resolver, agg, zaptest.NewLogger(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.SelectWindow(ctx, dashboard.WindowToday, nil)
	}()
	<-agg.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.SelectWindow(ctx, dashboard.WindowYesterday, nil)
	}()
	<-agg.started

	// The newer selection completes first; the older one must not overwrite it.
	close(agg.release[dashboard.WindowYesterday])
	require.Eventually(t, func() bool {
		v, ok := svc.Current()
		return ok && v.Window.Mode == dashboard.WindowYesterday
	}, time.Second, 5*time.Millisecond)

	close(agg.release[dashboard.WindowToday])
	wg.Wait()

	view, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, dashboard.WindowYesterday, view.Window.Mode)
}

func TestDashboardService_Archive(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.Archive(context.Background())
		assert.ErrorIs(t, err, ErrArchiveNotConfigured)
	})

	t.Run("stores current snapshot as JSON", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		archive := newMemoryArchive()
		svc.SetArchive(archive, func(at time.Time) string { return "snapshots/" + at.Format("2006/01/02") + "/x.json" })
		svc.now = func() time.Time { return may10 }

		key, err := svc.Archive(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "snapshots/2024/05/10/x.json", key)

		var stored View
		require.NoError(t, json.Unmarshal(archive.objects[key], &stored))
		assert.Equal(t, dashboard.WindowToday, stored.Window.Mode)
		assert.Equal(t, "100L", stored.Metrics.TotalStock)
	})

	t.Run("storage failure surfaces", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		archive := newMemoryArchive()
		archive.err = errors.New("disk full")
		svc.SetArchive(archive, func(time.Time) string { return "k" })

		_, err := svc.Archive(context.Background())
		assert.EqualError(t, err, "disk full")
	})
}
