package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appdashboard "github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/application/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/application/directory"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/application/review"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/event"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/dto"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// testNow is a Friday
var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// MockGateway is a mock implementation of quantityupdate.Gateway. Listing is
// served from requests; Accept and Reject go through the mock.
type MockGateway struct {
	mock.Mock
	mu       sync.Mutex
	requests []quantityupdate.Request
}

func (m *MockGateway) ListBetween(ctx context.Context, start, end time.Time) ([]quantityupdate.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]quantityupdate.Request(nil), m.requests...), nil
}

func (m *MockGateway) Accept(ctx context.Context, id string, newQuantity float64, lastUpdated string) error {
	args := m.Called(ctx, id, newQuantity, lastUpdated)
	if args.Error(0) == nil {
		m.setStatus(id, quantityupdate.StatusAccepted)
	}
	return args.Error(0)
}

func (m *MockGateway) Reject(ctx context.Context, id string, reason string) error {
	args := m.Called(ctx, id, reason)
	if args.Error(0) == nil {
		m.setStatus(id, quantityupdate.StatusRejected)
	}
	return args.Error(0)
}

func (m *MockGateway) setStatus(id string, status quantityupdate.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.requests {
		if m.requests[i].ID == id {
			m.requests[i].Status = status
		}
	}
}

type stubSummaries struct{}

func (stubSummaries) InvoiceSummary(ctx context.Context) (dashboard.InvoiceSummary, error) {
	return dashboard.InvoiceSummary{
		TotalAmount: decimal.NewNullDecimal(decimal.NewFromInt(5000)),
		TotalDue:    decimal.NewNullDecimal(decimal.NewFromInt(1200)),
	}, nil
}

func (stubSummaries) StockSummary(ctx context.Context, window dashboard.TimeWindow) (dashboard.StockSummary, error) {
	return dashboard.StockSummary{
		Totals: dashboard.StockTotals{
			StockIn:      decimal.NewNullDecimal(decimal.NewFromInt(100)),
			CurrentStock: decimal.NewNullDecimal(decimal.NewFromInt(40)),
		},
	}, nil
}

// stubDirectory serves customers by page and records queries
type stubDirectory struct {
	mu        sync.Mutex
	customers []customer.Customer
	queries   []customer.Query
	failIDs   map[string]bool
	listErr   error
}

func newStubDirectory(n int) *stubDirectory {
	d := &stubDirectory{failIDs: map[string]bool{}}
	for i := 1; i <= n; i++ {
		d.customers = append(d.customers, customer.Customer{
			ID:       fmt.Sprintf("c%02d", i),
			Name:     fmt.Sprintf("Customer %d", i),
			IsActive: i%2 == 1,
			Quantity: 1,
		})
	}
	return d
}

func (d *stubDirectory) List(ctx context.Context, q customer.Query) (customer.QueryResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, q)
	if d.listErr != nil {
		return customer.QueryResult{}, d.listErr
	}

	var matched []customer.Customer
	for _, c := range d.customers {
		if q.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, c)
	}
	start := (q.Page - 1) * q.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := min(start+q.PageSize, len(matched))
	pages := (len(matched) + q.PageSize - 1) / q.PageSize
	return customer.QueryResult{
		Items:      append([]customer.Customer{}, matched[start:end]...),
		TotalItems: len(matched),
		TotalPages: pages,
		Page:       q.Page,
	}, nil
}

func (d *stubDirectory) All(ctx context.Context) ([]customer.Customer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]customer.Customer(nil), d.customers...), nil
}

func (d *stubDirectory) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failIDs[id] {
		return shared.ErrUpstream.WithCause(fmt.Errorf("delete %s: status 500", id))
	}
	for i, c := range d.customers {
		if c.ID == id {
			d.customers = append(d.customers[:i], d.customers[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (d *stubDirectory) lastQuery() customer.Query {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queries[len(d.queries)-1]
}

type harness struct {
	engine    *gin.Engine
	gateway   *MockGateway
	directory *stubDirectory
	service   *appdashboard.DashboardService
	review    *review.Engine
	sessions  *directory.SessionManager
}

func pendingRequest(id string, oldQty, newQty float64) quantityupdate.Request {
	return quantityupdate.Request{
		ID:          id,
		Customer:    customer.Ref{ID: "c01", Name: "Customer 1"},
		Date:        testNow,
		TimeOfDay:   "morning",
		OldQuantity: oldQty,
		NewQuantity: newQty,
		Status:      quantityupdate.StatusPending,
		LastUpdated: "2024-03-15T08:00:00Z",
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())
	log := zaptest.NewLogger(t)

	h := &harness{
		gateway:   &MockGateway{requests: []quantityupdate.Request{pendingRequest("qu-1", 2, 3), pendingRequest("qu-2", 1, 0.5)}},
		directory: newStubDirectory(25),
	}

	resolver := dashboard.NewDateRangeResolver(dashboard.ClockFunc(func() time.Time { return testNow }))
	aggregator := appdashboard.NewMetricAggregator(h.directory, stubSummaries{}, h.gateway,
		appdashboard.WithAggregatorLogger(log))
	h.service = appdashboard.NewDashboardService(resolver, aggregator, log)

	bus := event.NewInMemoryEventBus(log)
	refresher := appdashboard.NewReviewEventHandler(h.service, log)
	bus.Subscribe(refresher, refresher.EventTypes()...)

	h.review = review.NewEngine(h.gateway, h.service, log)
	h.review.SetEventPublisher(bus)

	h.sessions = directory.NewSessionManager(func() *directory.Controller {
		return directory.NewController(h.directory, directory.Options{PageSize: 10, Debounce: time.Hour, Logger: log})
	}, time.Hour, log)
	t.Cleanup(h.sessions.Stop)

	dash := NewDashboardHandler(h.service)
	qu := NewQuantityUpdateHandler(h.service, h.review)
	cust := NewCustomerHandler(h.directory, 10)
	dir := NewDirectoryHandler(h.sessions)

	e := gin.New()
	e.Use(middleware.RequestID())
	api := e.Group("/api/v1")
	api.GET("/dashboard", dash.Get)
	api.POST("/dashboard/refresh", dash.Refresh)
	api.GET("/quantity-updates/audit", qu.Audit)
	api.POST("/quantity-updates/:id/accept", qu.Accept)
	api.POST("/quantity-updates/:id/reject", qu.Reject)
	api.GET("/quantity-updates/reason-draft", qu.GetDraft)
	api.POST("/quantity-updates/reason-draft", qu.BeginDraft)
	api.PUT("/quantity-updates/reason-draft", qu.UpdateDraft)
	api.DELETE("/quantity-updates/reason-draft", qu.CancelDraft)
	api.POST("/quantity-updates/reason-draft/submit", qu.SubmitDraft)
	api.GET("/customers", cust.List)
	s := api.Group("/directory/sessions")
	s.POST("", dir.Create)
	s.GET("/:id", dir.Get)
	s.DELETE("/:id", dir.Delete)
	s.POST("/:id/search", dir.Search)
	s.POST("/:id/clear-search", dir.ClearSearch)
	s.POST("/:id/filters", dir.Filters)
	s.POST("/:id/sort", dir.Sort)
	s.POST("/:id/page", dir.Page)
	s.POST("/:id/selection", dir.Selection)
	s.POST("/:id/select-all", dir.SelectAll)
	s.POST("/:id/toggle/:customerId", dir.Toggle)
	s.POST("/:id/bulk-delete", dir.BulkDelete)
	h.engine = e
	return h
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the response envelope and its data into T
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) (T, dto.Response) {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())

	var data T
	if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		require.NoError(t, json.Unmarshal(envelope.Data, &data))
	}
	return data, envelope.Response
}
