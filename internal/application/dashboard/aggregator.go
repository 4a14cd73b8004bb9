package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/logger"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MetricAggregator assembles a dashboard snapshot from the four upstream sources.
// A source that fails, panics or times out is logged and replaced by its default;
// Aggregate itself never fails because of a source.
type MetricAggregator struct {
	customers     customer.Directory
	summaries     dashboard.SummaryProvider
	updates       quantityupdate.Gateway
	logger        *zap.Logger
	metrics       *telemetry.DashboardMetrics
	sourceTimeout time.Duration
	now           func() time.Time
}

// AggregatorOption configures a MetricAggregator
type AggregatorOption func(*MetricAggregator)

// WithSourceTimeout bounds each source fetch; zero means no bound beyond the caller's context
func WithSourceTimeout(d time.Duration) AggregatorOption {
	return func(a *MetricAggregator) {
		a.sourceTimeout = d
	}
}

// WithAggregatorLogger sets the logger
func WithAggregatorLogger(l *zap.Logger) AggregatorOption {
	return func(a *MetricAggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithAggregatorMetrics sets the metrics recorder
func WithAggregatorMetrics(m *telemetry.DashboardMetrics) AggregatorOption {
	return func(a *MetricAggregator) {
		a.metrics = m
	}
}

// NewMetricAggregator creates a new MetricAggregator
func NewMetricAggregator(
	customers customer.Directory,
	summaries dashboard.SummaryProvider,
	updates quantityupdate.Gateway,
	opts ...AggregatorOption,
) *MetricAggregator {
	a := &MetricAggregator{
		customers: customers,
		summaries: summaries,
		updates:   updates,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate runs a full fresh aggregation for window
func (a *MetricAggregator) Aggregate(ctx context.Context, window dashboard.TimeWindow) dashboard.Snapshot {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "aggregate",
		telemetry.WithAttribute(telemetry.SpanAttrWindowMode, window.Mode.String()),
		telemetry.WithAttribute(telemetry.SpanAttrWindowStart, window.StartParam()),
		telemetry.WithAttribute(telemetry.SpanAttrWindowEnd, window.EndParam()),
	)
	defer span.End()

	started := a.now()
	snapshot := dashboard.NewSnapshot(window)

	var (
		customers []customer.Customer
		invoices  dashboard.InvoiceSummary
		stock     dashboard.StockSummary
		updates   []quantityupdate.Request
	)
	errs := make(map[dashboard.Source]error, len(dashboard.AllSources))
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(source dashboard.Source, fetch func(ctx context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := a.fetch(ctx, source, fetch)
			if err != nil {
				mu.Lock()
				errs[source] = err
				mu.Unlock()
			}
		}()
	}

	run(dashboard.SourceCustomers, func(ctx context.Context) error {
		list, err := a.customers.All(ctx)
		if err == nil {
			customers = list
		}
		return err
	})
	run(dashboard.SourceInvoices, func(ctx context.Context) error {
		summary, err := a.summaries.InvoiceSummary(ctx)
		if err == nil {
			invoices = summary
		}
		return err
	})
	run(dashboard.SourceStock, func(ctx context.Context) error {
		summary, err := a.summaries.StockSummary(ctx, window)
		if err == nil {
			stock = summary
		}
		return err
	})
	run(dashboard.SourceQuantityUpdates, func(ctx context.Context) error {
		list, err := a.updates.ListBetween(ctx, window.StartDate, window.EndDate)
		if err == nil {
			updates = list
		}
		return err
	})

	wg.Wait()

	// Each result variable is written only by its own goroutine and only on success.
	if _, failed := errs[dashboard.SourceCustomers]; !failed && customers != nil {
		snapshot.Customers = customers
	}
	if _, failed := errs[dashboard.SourceInvoices]; !failed {
		snapshot.Invoices = invoices
	}
	if _, failed := errs[dashboard.SourceStock]; !failed {
		if stock.Records == nil {
			stock.Records = []dashboard.StockRecord{}
		}
		snapshot.Stock = stock
		snapshot.Records = stock.Records
	}
	if _, failed := errs[dashboard.SourceQuantityUpdates]; !failed && updates != nil {
		snapshot.QuantityUpdates = updates
	}
	for _, source := range dashboard.AllSources {
		if err, failed := errs[source]; failed {
			snapshot.Failures = append(snapshot.Failures, dashboard.SourceFailure{Source: source, Message: err.Error()})
			telemetry.AddEvent(span, telemetry.EventSourceDefaulted, telemetry.SpanAttrSource, string(source))
		}
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrFailedSources, len(snapshot.Failures))

	snapshot.GeneratedAt = a.now()
	elapsed := snapshot.GeneratedAt.Sub(started)

	a.metrics.RecordAggregation(ctx, window.Mode.String(), elapsed, len(snapshot.Failures),
		snapshot.ActiveCustomerCount(), len(snapshot.PendingRequests()))

	logger.WithLogger(ctx, a.logger).Debug("Dashboard aggregated",
		zap.String("window_mode", window.Mode.String()),
		zap.String("start_date", window.StartParam()),
		zap.String("end_date", window.EndParam()),
		zap.Int("failed_sources", len(snapshot.Failures)),
		zap.Duration("duration", elapsed),
	)

	return snapshot
}

// fetch runs one source with its own timeout and converts a panic into an error
func (a *MetricAggregator) fetch(ctx context.Context, source dashboard.Source, fn func(ctx context.Context) error) (err error) {
	if a.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.sourceTimeout)
		defer cancel()
	}

	ctx, span := telemetry.StartSourceSpan(ctx, string(source))
	defer span.End()

	started := a.now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		telemetry.RecordError(span, err)
		a.metrics.RecordSource(ctx, string(source), a.now().Sub(started), err)
		if err != nil {
			logger.WithLogger(ctx, a.logger).Warn("Dashboard source failed, using default",
				zap.String("source", string(source)),
				zap.Error(err),
			)
		}
	}()

	return fn(ctx)
}
