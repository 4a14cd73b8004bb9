package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMetricAggregator_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	dir, sums, ups := healthySources()
	sums.stockErr = errors.New("stock service down")
	NewMetricAggregator(dir, sums, ups).Aggregate(context.Background(), todayWindow())

	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range sr.Ended() {
		byName[s.Name()] = s
	}
	require.Len(t, byName, 5)

	root := byName["dashboard.aggregate"]
	require.NotNil(t, root)
	var failed int64 = -1
	for _, kv := range root.Attributes() {
		if string(kv.Key) == telemetry.SpanAttrFailedSources {
			failed = kv.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(1), failed)
	require.Len(t, root.Events(), 1)
	assert.Equal(t, telemetry.EventSourceDefaulted, root.Events()[0].Name)

	for _, name := range []string{"customers", "invoices", "stock", "quantityUpdates"} {
		span := byName["dashboard.source."+name]
		require.NotNil(t, span, name)
		assert.Equal(t, root.SpanContext().SpanID(), span.Parent().SpanID(), name)
		if name == "stock" {
			assert.Equal(t, codes.Error, span.Status().Code)
		} else {
			assert.NotEqual(t, codes.Error, span.Status().Code, name)
		}
	}
}
