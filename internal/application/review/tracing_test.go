package review

import (
	"context"
	"errors"
	"testing"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) string {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestEngine_Spans(t *testing.T) {
	t.Run("accept span carries the request id", func(t *testing.T) {
		sr := recordSpans(t)
		e, gw, _ := newTestEngine(t, nil)
		gw.On("Accept", mock.Anything, "q1", float64(3), mock.Anything).Return(nil).Once()

		require.NoError(t, e.Accept(context.Background(), pending("q1")))

		ended := sr.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, "review.accept", ended[0].Name())
		assert.Equal(t, "q1", spanAttr(ended[0], telemetry.SpanAttrRequestID))
		assert.Equal(t, "cust-q1", spanAttr(ended[0], telemetry.SpanAttrCustomerID))
		assert.NotEqual(t, codes.Error, ended[0].Status().Code)
	})

	t.Run("failed reject marks the span", func(t *testing.T) {
		sr := recordSpans(t)
		e, gw, _ := newTestEngine(t, nil)
		gw.On("Reject", mock.Anything, "q2", "Out of stock").
			Return(shared.ErrUpstream.WithCause(errors.New("502"))).Once()

		require.Error(t, e.Reject(context.Background(), pending("q2"), "Out of stock"))

		ended := sr.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, "review.reject", ended[0].Name())
		assert.Equal(t, codes.Error, ended[0].Status().Code)
	})

	t.Run("blank reason is an event, not an error", func(t *testing.T) {
		sr := recordSpans(t)
		e, _, _ := newTestEngine(t, nil)

		require.Error(t, e.Reject(context.Background(), pending("q3"), "   "))

		ended := sr.Ended()
		require.Len(t, ended, 1)
		require.Len(t, ended[0].Events(), 1)
		assert.Equal(t, telemetry.EventActionRefused, ended[0].Events()[0].Name)
		assert.NotEqual(t, codes.Error, ended[0].Status().Code)
	})
}
