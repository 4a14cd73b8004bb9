package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrArchiveNotConfigured is returned by Archive when no archive backend is set
var ErrArchiveNotConfigured = errors.New("snapshot archive is not configured")

// Aggregator produces snapshots for a window
type Aggregator interface {
	Aggregate(ctx context.Context, window dashboard.TimeWindow) dashboard.Snapshot
}

// ArchiveKeyFunc returns the storage key for a snapshot archived at t
type ArchiveKeyFunc func(t time.Time) string

// DashboardService owns the selected window and the current snapshot.
// Snapshots are replaced wholesale; an aggregation started before a newer one
// completes is discarded.
type DashboardService struct {
	resolver   *dashboard.DateRangeResolver
	aggregator Aggregator
	logger     *zap.Logger
	archive    dashboard.SnapshotArchive
	archiveKey ArchiveKeyFunc
	now        func() time.Time

	mu       sync.RWMutex
	window   dashboard.TimeWindow
	snapshot *dashboard.Snapshot
	issued   uint64
	applied  uint64
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(resolver *dashboard.DateRangeResolver, aggregator Aggregator, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		resolver:   resolver,
		aggregator: aggregator,
		logger:     logger,
		now:        time.Now,
	}
}

// SetArchive configures where Archive stores snapshots
func (s *DashboardService) SetArchive(archive dashboard.SnapshotArchive, key ArchiveKeyFunc) {
	s.archive = archive
	s.archiveKey = key
}

// PendingRow is a reviewable quantity update with its display difference
type PendingRow struct {
	quantityupdate.Request
	Difference      float64 `json:"difference"`
	DifferenceLabel string  `json:"differenceLabel"`
}

// View is a copy of the current dashboard state
type View struct {
	Window   dashboard.TimeWindow `json:"window"`
	Metrics  dashboard.Metrics    `json:"metrics"`
	Snapshot dashboard.Snapshot   `json:"snapshot"`
	Pending  []PendingRow         `json:"pendingRequests"`
}

// SelectWindow resolves mode, aggregates it and makes it the current window
func (s *DashboardService) SelectWindow(ctx context.Context, mode dashboard.WindowMode, explicit *dashboard.DateRange) (View, error) {
	window, err := s.resolver.Resolve(mode, explicit)
	if err != nil {
		return View{}, err
	}

	logger.WithLogger(ctx, s.logger).Info("Dashboard window selected",
		zap.String("window_mode", window.Mode.String()),
		zap.String("start_date", window.StartParam()),
		zap.String("end_date", window.EndParam()),
	)
	return s.aggregate(ctx, window), nil
}

// Refresh re-aggregates the current window, selecting today when none is set
func (s *DashboardService) Refresh(ctx context.Context) (View, error) {
	s.mu.RLock()
	window := s.window
	s.mu.RUnlock()

	if window.Mode == "" {
		return s.SelectWindow(ctx, dashboard.WindowToday, nil)
	}
	// Relative windows move with the clock
	if window.Mode != dashboard.WindowCustom {
		resolved, err := s.resolver.Resolve(window.Mode, nil)
		if err != nil {
			return View{}, err
		}
		window = resolved
	}
	return s.aggregate(ctx, window), nil
}

// Current returns the current view; false when nothing has been aggregated yet
func (s *DashboardService) Current() (View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return View{}, false
	}
	return newView(cloneSnapshot(*s.snapshot)), true
}

// FindRequest looks up a quantity update in the current snapshot
func (s *DashboardService) FindRequest(id string) (quantityupdate.Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return quantityupdate.Request{}, false
	}
	return quantityupdate.Find(s.snapshot.QuantityUpdates, id)
}

// Archive serializes the current snapshot and stores it, returning the key
func (s *DashboardService) Archive(ctx context.Context) (string, error) {
	if s.archive == nil || s.archiveKey == nil {
		return "", ErrArchiveNotConfigured
	}

	view, ok := s.Current()
	if !ok {
		var err error
		if view, err = s.Refresh(ctx); err != nil {
			return "", err
		}
	}

	data, err := json.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := s.archiveKey(s.now())
	if err := s.archive.Put(ctx, key, data); err != nil {
		return "", err
	}

	logger.WithLogger(ctx, s.logger).Info("Dashboard snapshot archived",
		zap.String("key", key),
		zap.String("window_mode", view.Window.Mode.String()),
		zap.Int("bytes", len(data)),
	)
	return key, nil
}

func (s *DashboardService) aggregate(ctx context.Context, window dashboard.TimeWindow) View {
	s.mu.Lock()
	s.issued++
	gen := s.issued
	s.mu.Unlock()

	snapshot := s.aggregator.Aggregate(ctx, window)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen > s.applied {
		s.applied = gen
		s.window = window
		s.snapshot = &snapshot
	} else {
		logger.WithLogger(ctx, s.logger).Debug("Discarding superseded dashboard aggregation",
			zap.Uint64("generation", gen),
			zap.Uint64("applied", s.applied),
		)
	}
	return newView(cloneSnapshot(snapshot))
}

func newView(snapshot dashboard.Snapshot) View {
	pending := snapshot.PendingRequests()
	rows := make([]PendingRow, 0, len(pending))
	for _, r := range pending {
		rows = append(rows, PendingRow{
			Request:         r,
			Difference:      r.Difference(),
			DifferenceLabel: dashboard.FormatDifference(r.Difference()),
		})
	}
	return View{
		Window:   snapshot.Window,
		Metrics:  snapshot.Metrics(),
		Snapshot: snapshot,
		Pending:  rows,
	}
}

func cloneSnapshot(s dashboard.Snapshot) dashboard.Snapshot {
	s.Customers = append([]customer.Customer{}, s.Customers...)
	s.Records = append([]dashboard.StockRecord{}, s.Records...)
	s.Stock.Records = append([]dashboard.StockRecord{}, s.Stock.Records...)
	s.QuantityUpdates = append([]quantityupdate.Request{}, s.QuantityUpdates...)
	s.Failures = append([]dashboard.SourceFailure{}, s.Failures...)
	return s
}
