// Package middleware provides HTTP middleware for the dashboard API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "dairy-dashboard",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig returns the otelgin server middleware. otelgin ends the
// span when the chain returns, so request attributes are added by
// SpanAttributes further down the chain.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanAttributes tags the server span with request_id, actor and the route's
// resource id. It must run after Tracing, RequestID and Actor.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpan(c, span)
		}
		c.Next()
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if actor := c.GetString(ActorKey); actor != "" {
		span.SetAttributes(attribute.String("actor", actor))
	}
	if sessionID := c.Param("id"); sessionID != "" {
		span.SetAttributes(attribute.String("resource_id", sessionID))
	}
}

// SpanErrorMarker tags failed requests with http.status_code and an
// error.type category. otelgin owns the span status, so only attributes are
// set here. Place it after Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}
		span.SetAttributes(
			attribute.Int("http.status_code", statusCode),
			attribute.String("error.type", errorType(statusCode)),
		)
	}
}

func errorType(statusCode int) string {
	switch {
	case statusCode == http.StatusBadGateway:
		return "upstream"
	case statusCode >= http.StatusInternalServerError:
		return "internal"
	case statusCode == http.StatusConflict:
		return "conflict"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "client"
	}
}
