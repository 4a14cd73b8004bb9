package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, mp)

	// Verify metrics are disabled
	assert.False(t, mp.IsEnabled())

	// GetConfig should return the config
	gotCfg := mp.GetConfig()
	assert.Equal(t, cfg.ServiceName, gotCfg.ServiceName)
	assert.False(t, gotCfg.Enabled)

	// Shutdown should succeed with no-op
	err = mp.Shutdown(ctx)
	assert.NoError(t, err)
}

func TestNewMeterProvider_Enabled(t *testing.T) {
	endpoint := collectorEndpoint(t)

	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: endpoint,
		ExportInterval:    1 * time.Second, // Short interval for testing
		ServiceName:       "test-service",
		Insecure:          true,
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, mp)

	// Verify metrics are enabled
	assert.True(t, mp.IsEnabled())

	// Get a meter and create metrics
	meter := mp.Meter("test")
	require.NotNil(t, meter)

	// Force flush to ensure metrics are exported
	err = mp.ForceFlush(ctx)
	assert.NoError(t, err)

	// Shutdown should succeed
	err = mp.Shutdown(ctx)
	assert.NoError(t, err)
}

func TestMeterProvider_Meter(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	// Get a meter even when disabled (should return no-op meter)
	meter := mp.Meter("test-meter")
	require.NotNil(t, meter)
}

func TestMeterProvider_ForceFlush_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	// ForceFlush should succeed when disabled
	err = mp.ForceFlush(ctx)
	assert.NoError(t, err)
}

func TestMeterProvider_ShutdownTimeout(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	// Shutdown with a cancelled context should still succeed for disabled provider
	cancelledCtx, cancel := context.WithCancel(ctx)
	cancel()

	err = mp.Shutdown(cancelledCtx)
	assert.NoError(t, err)
}

func TestMetricsConfig_Defaults(t *testing.T) {
	cfg := telemetry.MetricsConfig{}

	// Verify zero values
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.CollectorEndpoint)
	assert.Zero(t, cfg.ExportInterval)
	assert.Empty(t, cfg.ServiceName)
}

func TestMeterProvider_DefaultExportInterval(t *testing.T) {
	endpoint := collectorEndpoint(t)

	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	// Create with zero export interval (should default to 60s)
	cfg := telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: endpoint,
		ExportInterval:    0, // Zero - should default to 60s
		ServiceName:       "test-service",
		Insecure:          true,
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, mp)

	// Cleanup
	_ = mp.Shutdown(ctx)
}

func TestNewMeterProvider_InvalidEndpoint(t *testing.T) {
	// Skip in short mode as this may try to connect
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.ErrorLevel))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	cfg := telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "invalid-host:99999", // Invalid endpoint
		ExportInterval:    1 * time.Second,
		ServiceName:       "test-service",
	}

	// Creation may succeed but metrics won't be exported
	// The exporter handles connection errors gracefully
	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	if err != nil {
		// Connection error is expected with invalid endpoint
		t.Logf("Expected connection error: %v", err)
		return
	}

	// If creation succeeded, shutdown should still return
	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	_ = mp.Shutdown(shutdownCtx)
}

// ============================================================================
// Counter Tests
// ============================================================================

func TestCounter_Add(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	meter := mp.Meter("test")
	counter, err := telemetry.NewCounter(meter, "test_counter", "Test counter description", "1")
	require.NoError(t, err)
	require.NotNil(t, counter)

	// Add values with attributes
	counter.Add(ctx, 5, attribute.String("method", "GET"))
	counter.Add(ctx, 10, attribute.String("method", "POST"))

	// Inc should work
	counter.Inc(ctx, attribute.String("method", "DELETE"))
}

func TestCounter_Inc(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	meter := mp.Meter("test")
	counter, err := telemetry.NewCounter(meter, "request_count", "Request count", "{request}")
	require.NoError(t, err)

	// Inc multiple times
	counter.Inc(ctx)
	counter.Inc(ctx, attribute.String("status", "success"))
	counter.Inc(ctx, attribute.String("status", "error"))
}

// ============================================================================
// Histogram Tests
// ============================================================================

func TestHistogram_Record(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	meter := mp.Meter("test")
	histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_request_duration_seconds",
		Description: "HTTP request duration",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	require.NoError(t, err)
	require.NotNil(t, histogram)

	// Record values
	histogram.Record(ctx, 0.005)
	histogram.Record(ctx, 0.1, attribute.String("route", "/api/v1/dashboard"))
	histogram.Record(ctx, 2.5, attribute.String("route", "/api/v1/customers"))
}

func TestHistogram_RecordDuration(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	meter := mp.Meter("test")
	histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "upstream_request_duration_seconds",
		Description: "Upstream request duration",
		Unit:        "s",
		Boundaries:  telemetry.UpstreamDurationBuckets,
	})
	require.NoError(t, err)

	// Record durations
	histogram.RecordDuration(ctx, 5*time.Millisecond)
	histogram.RecordDuration(ctx, 100*time.Millisecond, telemetry.AttrSource.String("stock"))
	histogram.RecordDuration(ctx, 1*time.Second, telemetry.AttrSource.String("invoices"))
}

func TestHistogram_CustomBoundaries(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	meter := mp.Meter("test")

	// Create histogram with custom boundaries
	customBoundaries := []float64{0.1, 0.5, 1.0, 5.0, 10.0}
	histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "custom_histogram",
		Description: "Custom histogram with specific boundaries",
		Unit:        "s",
		Boundaries:  customBoundaries,
	})
	require.NoError(t, err)
	require.NotNil(t, histogram)

	histogram.Record(ctx, 0.25)
}

func TestHistogram_NoBoundaries(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	meter := mp.Meter("test")

	// Create histogram without custom boundaries (uses SDK defaults)
	histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "default_histogram",
		Description: "Histogram with default boundaries",
		Unit:        "s",
	})
	require.NoError(t, err)
	require.NotNil(t, histogram)

	histogram.Record(ctx, 1.5)
}

// ============================================================================
// Gauge Tests
// ============================================================================

func TestGauge_Record(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	meter := mp.Meter("test")
	gauge, err := telemetry.NewGauge(meter, "active_connections", "Number of active connections", "{connection}")
	require.NoError(t, err)
	require.NotNil(t, gauge)

	// Record values
	gauge.Record(ctx, 10)
	gauge.Record(ctx, 15, attribute.String("pool", "db"))
	gauge.Record(ctx, 5, attribute.String("pool", "redis"))
}

func TestCommonAttributes(t *testing.T) {
	assert.Equal(t, "http.method", string(telemetry.AttrHTTPMethod))
	assert.Equal(t, "http.status_code", string(telemetry.AttrHTTPStatusCode))
	assert.Equal(t, "http.route", string(telemetry.AttrHTTPRoute))
	assert.Equal(t, "source", string(telemetry.AttrSource))
	assert.Equal(t, "window_mode", string(telemetry.AttrWindowMode))
	assert.Equal(t, "outcome", string(telemetry.AttrOutcome))
	assert.Equal(t, "action", string(telemetry.AttrAction))
	assert.Equal(t, "job_type", string(telemetry.AttrJobType))
}

// ============================================================================
// Default Bucket Boundaries Tests
// ============================================================================

func TestDefaultBuckets(t *testing.T) {
	// Verify HTTP duration buckets
	assert.Equal(t, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, telemetry.HTTPDurationBuckets)

	assert.Equal(t, []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15}, telemetry.UpstreamDurationBuckets)
}

func TestHistogram_WithHTTPDurationBuckets(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	meter := mp.Meter("test")
	histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP server request duration",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	require.NoError(t, err)

	// Record some typical HTTP request durations
	histogram.Record(ctx, 0.005, telemetry.AttrHTTPMethod.String("GET"))  // 5ms
	histogram.Record(ctx, 0.05, telemetry.AttrHTTPMethod.String("POST"))  // 50ms
	histogram.Record(ctx, 0.5, telemetry.AttrHTTPMethod.String("PUT"))    // 500ms
	histogram.Record(ctx, 5.0, telemetry.AttrHTTPMethod.String("DELETE")) // 5s (slow)
}

func TestHistogram_WithUpstreamDurationBuckets(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	meter := mp.Meter("test")
	histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "upstream_request_duration_seconds",
		Description: "Upstream request duration",
		Unit:        "s",
		Boundaries:  telemetry.UpstreamDurationBuckets,
	})
	require.NoError(t, err)

	// Record typical upstream fetch durations
	histogram.Record(ctx, 0.001, telemetry.AttrSource.String("customers"))
	histogram.Record(ctx, 0.01, telemetry.AttrSource.String("invoices"))
	histogram.Record(ctx, 0.1, telemetry.AttrSource.String("stock"))
	histogram.Record(ctx, 1.0, telemetry.AttrSource.String("quantity_updates")) // 1s (slow)
}
