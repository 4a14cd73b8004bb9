// Package backend talks to the upstream dairy backend over JSON/HTTP.
// It includes retry logic, tolerant response decoding, and the gateway
// implementations used by the dashboard, review, and directory services.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "dairy-dashboard/backend"

// Client is the HTTP client for the upstream backend.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	headers     map[string]string
	retryConfig RetryConfig
	logger      *zap.Logger
	tracer      trace.Tracer
	mu          sync.RWMutex
}

// ClientConfig configures the upstream connection.
type ClientConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
	UserAgent string
}

// RetryConfig configures retry behavior. Only idempotent methods are retried.
type RetryConfig struct {
	MaxRetries  int
	RetryDelay  time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	ShouldRetry func(resp *http.Response, err error) bool
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		RetryDelay: 200 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		Multiplier: 2.0,
		ShouldRetry: func(resp *http.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled)
			}
			// Retry on 5xx errors and 429 (Too Many Requests)
			return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		},
	}
}

// NewClient creates a new upstream client.
func NewClient(cfg ClientConfig, retryCfg *RetryConfig, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "dairy-dashboard/1.0"
	}

	if retryCfg == nil {
		defaultCfg := DefaultRetryConfig()
		retryCfg = &defaultCfg
	}
	if retryCfg.ShouldRetry == nil {
		retryCfg.ShouldRetry = DefaultRetryConfig().ShouldRetry
	}
	if retryCfg.Multiplier <= 0 {
		retryCfg.Multiplier = 2.0
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		baseURL:     base,
		headers:     make(map[string]string),
		retryConfig: *retryCfg,
		logger:      logger.Named("backend"),
		tracer:      otel.Tracer(tracerName),
	}

	client.headers["Accept"] = "application/json"
	client.headers["User-Agent"] = cfg.UserAgent
	if cfg.AuthToken != "" {
		client.headers["Authorization"] = "Bearer " + cfg.AuthToken
	}

	return client, nil
}

// Request represents an HTTP request to be executed.
type Request struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Body        any
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Attempts   int
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// StatusCodeOf returns the upstream status carried by err, or 0
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Do executes an HTTP request. Idempotent requests are retried per the retry
// config; the body is re-marshaled for every attempt.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u := c.buildURL(req.Path, req.QueryParams)

	ctx, span := c.tracer.Start(ctx, req.Method+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", u.Path),
		),
	)
	defer span.End()

	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	maxRetries := 0
	if isIdempotent(req.Method) {
		maxRetries = c.retryConfig.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			c.logger.Debug("Retrying upstream request",
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				span.SetStatus(codes.Error, ctx.Err().Error())
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bodyReader)
		if err != nil {
			return nil, fmt.Errorf("creating HTTP request: %w", err)
		}
		c.setHeaders(httpReq, bodyBytes != nil)
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

		start := time.Now()
		httpResp, err := c.httpClient.Do(httpReq)
		duration := time.Since(start)

		if err == nil {
			resp := &Response{
				StatusCode: httpResp.StatusCode,
				Headers:    httpResp.Header,
				Duration:   duration,
				Attempts:   attempt + 1,
			}
			resp.Body, err = io.ReadAll(httpResp.Body)
			httpResp.Body.Close()
			if err != nil {
				err = fmt.Errorf("reading response body: %w", err)
			} else if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
				err = &StatusError{
					Method:     req.Method,
					Path:       req.Path,
					StatusCode: httpResp.StatusCode,
					Message:    errorMessage(resp.Body),
				}
			}
			if err == nil {
				span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
				return resp, nil
			}
		}
		lastErr = err

		if attempt < maxRetries && c.retryConfig.ShouldRetry(httpResp, unwrapTransport(err)) {
			continue
		}
		break
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return nil, lastErr
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, queryParams map[string]string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:      http.MethodGet,
		Path:        path,
		QueryParams: queryParams,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

// GetJSON performs a GET request and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, queryParams map[string]string, out any) error {
	resp, err := c.Get(ctx, path, queryParams)
	if err != nil {
		return err
	}
	return decodeBody(resp.Body, out)
}

// buildURL appends path to the base URL path and adds query parameters.
func (c *Client) buildURL(path string, queryParams map[string]string) *url.URL {
	u := c.baseURL.JoinPath(strings.Split(strings.Trim(path, "/"), "/")...)

	if len(queryParams) > 0 {
		q := u.Query()
		for k, v := range queryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// calculateBackoff calculates the backoff delay for the given attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.retryConfig.RetryDelay) * math.Pow(c.retryConfig.Multiplier, float64(attempt-1))
	if c.retryConfig.MaxDelay > 0 && delay > float64(c.retryConfig.MaxDelay) {
		delay = float64(c.retryConfig.MaxDelay)
	}
	// Add jitter (+/-25%)
	jitter := delay * 0.25
	delay = delay + (rand.Float64()*2-1)*jitter
	return time.Duration(delay)
}

// SetHeader sets a default header for all requests.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func isIdempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// unwrapTransport hides status errors from ShouldRetry so it only sees transport failures.
func unwrapTransport(err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		return nil
	}
	return err
}

// errorMessage extracts a human message from an error body
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		s := strings.TrimSpace(string(body))
		if len(s) > 200 {
			s = s[:200]
		}
		return s
	}
	if payload.Message != "" {
		return payload.Message
	}
	switch e := payload.Error.(type) {
	case string:
		return e
	case map[string]any:
		if m, ok := e["message"].(string); ok {
			return m
		}
	}
	return ""
}
