package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
)

// Source names a metric provider feeding the snapshot
type Source string

const (
	SourceCustomers       Source = "customers"
	SourceInvoices        Source = "invoices"
	SourceStock           Source = "stock"
	SourceQuantityUpdates Source = "quantityUpdates"
)

// AllSources lists every provider in aggregation order
var AllSources = []Source{SourceCustomers, SourceInvoices, SourceStock, SourceQuantityUpdates}

// InvoiceSummary carries the invoice dashboard totals. Absent totals stay invalid.
type InvoiceSummary struct {
	TotalAmount decimal.NullDecimal `json:"totalAmount"`
	TotalDue    decimal.NullDecimal `json:"totalDue"`
}

// StockTotals carries the stock totals for the window. Absent totals stay invalid.
type StockTotals struct {
	StockIn      decimal.NullDecimal `json:"stockIn"`
	CurrentStock decimal.NullDecimal `json:"currentStock"`
}

// StockRecord is one day of stock movement inside the window
type StockRecord struct {
	Date         time.Time       `json:"date"`
	StockIn      decimal.Decimal `json:"stockIn"`
	StockOut     decimal.Decimal `json:"stockOut"`
	CurrentStock decimal.Decimal `json:"currentStock"`
}

// StockSummary is the stock provider payload
type StockSummary struct {
	Totals  StockTotals   `json:"totals"`
	Records []StockRecord `json:"records"`
}

// SourceFailure records that a provider failed and its field was defaulted
type SourceFailure struct {
	Source  Source `json:"source"`
	Message string `json:"message"`
}

// Snapshot is the complete dashboard state for one window. It is built once
// per aggregation and replaced as a whole; every field is always usable.
type Snapshot struct {
	Window          TimeWindow               `json:"window"`
	Invoices        InvoiceSummary           `json:"invoiceSummary"`
	Stock           StockSummary             `json:"stockSummary"`
	Customers       []customer.Customer      `json:"customers"`
	Records         []StockRecord            `json:"records"`
	QuantityUpdates []quantityupdate.Request `json:"quantityUpdates"`
	Failures        []SourceFailure          `json:"failures"`
	GeneratedAt     time.Time                `json:"generatedAt"`
}

// NewSnapshot returns a snapshot for window with every field at its default
func NewSnapshot(window TimeWindow) Snapshot {
	return Snapshot{
		Window:          window,
		Stock:           StockSummary{Records: []StockRecord{}},
		Customers:       []customer.Customer{},
		Records:         []StockRecord{},
		QuantityUpdates: []quantityupdate.Request{},
		Failures:        []SourceFailure{},
	}
}

// TotalStock returns stock.totals.stockIn, or 0
func (s Snapshot) TotalStock() decimal.Decimal {
	return valueOrZero(s.Stock.Totals.StockIn)
}

// RemainingStock returns stock.totals.currentStock, or 0
func (s Snapshot) RemainingStock() decimal.Decimal {
	return valueOrZero(s.Stock.Totals.CurrentStock)
}

// TotalRevenue returns invoices.summary.totalAmount, or 0
func (s Snapshot) TotalRevenue() decimal.Decimal {
	return valueOrZero(s.Invoices.TotalAmount)
}

// PendingReceivables returns invoices.summary.totalDue, or 0
func (s Snapshot) PendingReceivables() decimal.Decimal {
	return valueOrZero(s.Invoices.TotalDue)
}

// ActiveCustomerCount returns the number of active customers
func (s Snapshot) ActiveCustomerCount() int {
	return customer.CountActive(s.Customers)
}

// PendingRequests returns the reviewable quantity update requests
func (s Snapshot) PendingRequests() []quantityupdate.Request {
	return quantityupdate.Pending(s.QuantityUpdates)
}

// Failed reports whether source was defaulted in this snapshot
func (s Snapshot) Failed(source Source) bool {
	for _, f := range s.Failures {
		if f.Source == source {
			return true
		}
	}
	return false
}

// Metrics is the read-only, formatted view of a snapshot
type Metrics struct {
	TotalStock          string `json:"totalStock"`
	RemainingStock      string `json:"remainingStock"`
	TotalRevenue        string `json:"totalRevenue"`
	PendingReceivables  string `json:"pendingReceivables"`
	ActiveCustomers     int    `json:"activeCustomers"`
	TotalCustomers      int    `json:"totalCustomers"`
	PendingUpdates      int    `json:"pendingUpdates"`
	DegradedSourceCount int    `json:"degradedSources"`
}

// Metrics computes the derived view. Nothing is cached on the snapshot.
func (s Snapshot) Metrics() Metrics {
	return Metrics{
		TotalStock:          FormatLitres(s.TotalStock()),
		RemainingStock:      FormatLitres(s.RemainingStock()),
		TotalRevenue:        FormatRupees(s.TotalRevenue()),
		PendingReceivables:  FormatRupees(s.PendingReceivables()),
		ActiveCustomers:     s.ActiveCustomerCount(),
		TotalCustomers:      len(s.Customers),
		PendingUpdates:      len(s.PendingRequests()),
		DegradedSourceCount: len(s.Failures),
	}
}

func valueOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
