package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Outcome values for the outcome attribute
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRefused  = "refused"
	OutcomeConflict = "conflict"
)

// DashboardMetrics holds the dashboard service instruments
type DashboardMetrics struct {
	aggregations        *Counter
	aggregationDuration *Histogram
	sourceFailures      *Counter
	sourceDuration      *Histogram
	reviewActions       *Counter
	directoryQueries    *Counter
	staleDiscards       *Counter
	bulkDeletes         *Counter
	activeCustomers     *Gauge
	pendingUpdates      *Gauge
	jobRuns             *Counter
	logger              *zap.Logger
}

// DashboardMetricsConfig configures DashboardMetrics
type DashboardMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewDashboardMetrics creates the instruments on cfg.Meter
func NewDashboardMetrics(cfg DashboardMetricsConfig) (*DashboardMetrics, error) {
	if cfg.Meter == nil {
		return nil, errors.New("NewDashboardMetrics: meter cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	m := cfg.Meter
	dm := &DashboardMetrics{logger: cfg.Logger}

	var err error
	if dm.aggregations, err = NewCounter(m, "dashboard_aggregations_total", "Completed snapshot aggregations", "{aggregation}"); err != nil {
		return nil, err
	}
	if dm.aggregationDuration, err = NewHistogram(m, HistogramOpts{
		Name:        "dashboard_aggregation_duration_seconds",
		Description: "Wall time of a full snapshot aggregation",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if dm.sourceFailures, err = NewCounter(m, "dashboard_source_failures_total", "Sources replaced by their default", "{failure}"); err != nil {
		return nil, err
	}
	if dm.sourceDuration, err = NewHistogram(m, HistogramOpts{
		Name:        "dashboard_source_duration_seconds",
		Description: "Duration of one source fetch",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if dm.reviewActions, err = NewCounter(m, "review_actions_total", "Accept and reject attempts by outcome", "{action}"); err != nil {
		return nil, err
	}
	if dm.directoryQueries, err = NewCounter(m, "directory_queries_total", "Customer directory queries issued", "{query}"); err != nil {
		return nil, err
	}
	if dm.staleDiscards, err = NewCounter(m, "directory_stale_responses_total", "Directory responses discarded as stale", "{response}"); err != nil {
		return nil, err
	}
	if dm.bulkDeletes, err = NewCounter(m, "directory_bulk_delete_items_total", "Customers processed by bulk delete", "{customer}"); err != nil {
		return nil, err
	}
	if dm.activeCustomers, err = NewGauge(m, "dashboard_active_customers", "Active customers in the latest snapshot", "{customer}"); err != nil {
		return nil, err
	}
	if dm.pendingUpdates, err = NewGauge(m, "dashboard_pending_quantity_updates", "Pending quantity updates in the latest snapshot", "{request}"); err != nil {
		return nil, err
	}
	if dm.jobRuns, err = NewCounter(m, "scheduler_job_runs_total", "Background job executions by outcome", "{run}"); err != nil {
		return nil, err
	}

	return dm, nil
}

// RecordAggregation records one finished aggregation and the latest snapshot gauges
func (dm *DashboardMetrics) RecordAggregation(ctx context.Context, mode string, d time.Duration, failedSources, activeCustomers, pendingUpdates int) {
	if dm == nil {
		return
	}
	outcome := OutcomeSuccess
	if failedSources > 0 {
		outcome = "degraded"
	}
	attrs := []attribute.KeyValue{AttrWindowMode.String(mode), AttrOutcome.String(outcome)}
	dm.aggregations.Inc(ctx, attrs...)
	dm.aggregationDuration.RecordDuration(ctx, d, attrs...)
	dm.activeCustomers.Record(ctx, int64(activeCustomers))
	dm.pendingUpdates.Record(ctx, int64(pendingUpdates))
}

// RecordSource records one source fetch
func (dm *DashboardMetrics) RecordSource(ctx context.Context, source string, d time.Duration, err error) {
	if dm == nil {
		return
	}
	dm.sourceDuration.RecordDuration(ctx, d, AttrSource.String(source))
	if err != nil {
		dm.sourceFailures.Inc(ctx, AttrSource.String(source))
	}
}

// RecordReviewAction records an accept or reject attempt
func (dm *DashboardMetrics) RecordReviewAction(ctx context.Context, action, outcome string) {
	if dm == nil {
		return
	}
	dm.reviewActions.Inc(ctx, AttrAction.String(action), AttrOutcome.String(outcome))
}

// RecordDirectoryQuery records an issued directory query
func (dm *DashboardMetrics) RecordDirectoryQuery(ctx context.Context) {
	if dm == nil {
		return
	}
	dm.directoryQueries.Inc(ctx)
}

// RecordStaleDiscard records a directory response dropped by the sequence guard
func (dm *DashboardMetrics) RecordStaleDiscard(ctx context.Context) {
	if dm == nil {
		return
	}
	dm.staleDiscards.Inc(ctx)
}

// RecordBulkDelete records bulk delete results
func (dm *DashboardMetrics) RecordBulkDelete(ctx context.Context, succeeded, failed int) {
	if dm == nil {
		return
	}
	if succeeded > 0 {
		dm.bulkDeletes.Add(ctx, int64(succeeded), AttrOutcome.String(OutcomeSuccess))
	}
	if failed > 0 {
		dm.bulkDeletes.Add(ctx, int64(failed), AttrOutcome.String(OutcomeFailure))
	}
}

// RecordJobRun records a scheduler job execution
func (dm *DashboardMetrics) RecordJobRun(ctx context.Context, jobType string, err error) {
	if dm == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	dm.jobRuns.Inc(ctx, AttrJobType.String(jobType), AttrOutcome.String(outcome))
}
