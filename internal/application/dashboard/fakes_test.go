package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
	"github.com/shopspring/decimal"
)

type fakeDirectory struct {
	customers []customer.Customer
	err       error
	panicMsg  string
	calls     int
	mu        sync.Mutex
}

func (f *fakeDirectory) List(ctx context.Context, q customer.Query) (customer.QueryResult, error) {
	return customer.QueryResult{}, nil
}

func (f *fakeDirectory) All(ctx context.Context) ([]customer.Customer, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.customers, f.err
}

func (f *fakeDirectory) Delete(ctx context.Context, id string) error {
	return nil
}

type fakeSummaries struct {
	invoices   dashboard.InvoiceSummary
	invoiceErr error
	stock      dashboard.StockSummary
	stockErr   error
	stockDelay time.Duration

	mu          sync.Mutex
	stockWindow dashboard.TimeWindow
}

func (f *fakeSummaries) InvoiceSummary(ctx context.Context) (dashboard.InvoiceSummary, error) {
	return f.invoices, f.invoiceErr
}

func (f *fakeSummaries) StockSummary(ctx context.Context, window dashboard.TimeWindow) (dashboard.StockSummary, error) {
	f.mu.Lock()
	f.stockWindow = window
	f.mu.Unlock()
	if f.stockDelay > 0 {
		select {
		case <-time.After(f.stockDelay):
		case <-ctx.Done():
			return dashboard.StockSummary{}, ctx.Err()
		}
	}
	return f.stock, f.stockErr
}

type fakeUpdates struct {
	requests []quantityupdate.Request
	err      error

	mu         sync.Mutex
	start, end time.Time
}

func (f *fakeUpdates) ListBetween(ctx context.Context, start, end time.Time) ([]quantityupdate.Request, error) {
	f.mu.Lock()
	f.start, f.end = start, end
	f.mu.Unlock()
	return f.requests, f.err
}

func (f *fakeUpdates) Accept(ctx context.Context, id string, newQuantity float64, lastUpdated string) error {
	return nil
}

func (f *fakeUpdates) Reject(ctx context.Context, id, reason string) error {
	return nil
}

func nd(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func fixedClock(t time.Time) dashboard.Clock {
	return dashboard.ClockFunc(func() time.Time { return t })
}

type memoryArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{objects: make(map[string][]byte)}
}

func (m *memoryArchive) Put(ctx context.Context, key string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryArchive) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key], nil
}
