package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for application spans
const TracerName = "dairy-dashboard"

// Span attribute keys
const (
	SpanAttrRequestID      = "quantity_update.id"
	SpanAttrCustomerID     = "customer.id"
	SpanAttrAction         = "review.action"
	SpanAttrWindowMode     = "dashboard.window_mode"
	SpanAttrWindowStart    = "dashboard.window_start"
	SpanAttrWindowEnd      = "dashboard.window_end"
	SpanAttrSource         = "dashboard.source"
	SpanAttrFailedSources  = "dashboard.failed_sources"
	EventSourceDefaulted   = "source_defaulted"
	EventActionRefused     = "action_refused"
	spanNameSourceTemplate = "dashboard.source.%s"
)

// SpanOption adds a start attribute to a span
type SpanOption func(*[]attribute.KeyValue)

// WithAttribute sets key on the span when it starts
func WithAttribute(key string, value any) SpanOption {
	return func(attrs *[]attribute.KeyValue) {
		*attrs = append(*attrs, toAttribute(key, value))
	}
}

// StartSpan starts an internal span on the global tracer provider.
// The caller must End the returned span.
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	var attrs []attribute.KeyValue
	for _, opt := range opts {
		opt(&attrs)
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartServiceSpan starts a span named "{service}.{method}"
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, opts...)
}

// StartSourceSpan starts the child span for one dashboard source fetch
func StartSourceSpan(ctx context.Context, source string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf(spanNameSourceTemplate, source), WithAttribute(SpanAttrSource, source))
}

// SetAttributes sets alternating key/value pairs on span; non-string keys are skipped
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	span.SetAttributes(pairs(keyValues)...)
}

// RecordError records err on span and marks it failed. A nil err is a no-op.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds a named event with alternating key/value attributes
func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(pairs(keyValues)...))
}

func pairs(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, toAttribute(key, keyValues[i+1]))
		}
	}
	return attrs
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
