package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
)

func nd(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestNewSnapshot_Defaults(t *testing.T) {
	window := TimeWindow{Mode: WindowToday, StartDate: date(2024, 5, 10), EndDate: date(2024, 5, 10), Label: "Today"}
	s := NewSnapshot(window)

	assert.Equal(t, window, s.Window)
	assert.NotNil(t, s.Customers)
	assert.NotNil(t, s.Records)
	assert.NotNil(t, s.QuantityUpdates)
	assert.Empty(t, s.Failures)
	assert.True(t, s.TotalStock().IsZero())
	assert.True(t, s.RemainingStock().IsZero())
	assert.True(t, s.TotalRevenue().IsZero())
	assert.True(t, s.PendingReceivables().IsZero())
	assert.Equal(t, 0, s.ActiveCustomerCount())
}

func TestNewSnapshot_NoNullLists(t *testing.T) {
	s := NewSnapshot(TimeWindow{Mode: WindowToday, StartDate: date(2024, 5, 10), EndDate: date(2024, 5, 10)})

	stock, err := json.Marshal(s.Stock)
	assert.NoError(t, err)
	assert.Contains(t, string(stock), `"records":[]`)

	full, err := json.Marshal(s)
	assert.NoError(t, err)
	for _, list := range []string{"customers", "records", "quantityUpdates", "failures"} {
		assert.Contains(t, string(full), `"`+list+`":[]`)
	}
}

func TestSnapshot_Metrics_EndToEndExample(t *testing.T) {
	window := TimeWindow{Mode: WindowToday, StartDate: date(2024, 5, 10), EndDate: date(2024, 5, 10), Label: "Today"}
	s := NewSnapshot(window)
	s.Customers = []customer.Customer{{ID: "c1", IsActive: true}, {ID: "c2", IsActive: false}}
	s.Stock = StockSummary{Totals: StockTotals{StockIn: nd(100), CurrentStock: nd(40)}}
	s.Invoices = InvoiceSummary{TotalAmount: nd(5000), TotalDue: nd(800)}
	s.QuantityUpdates = []quantityupdate.Request{{ID: "q1", Status: quantityupdate.StatusPending, OldQuantity: 2, NewQuantity: 3}}

	m := s.Metrics()

	assert.Equal(t, 1, m.ActiveCustomers)
	assert.Equal(t, 2, m.TotalCustomers)
	assert.Equal(t, "100L", m.TotalStock)
	assert.Equal(t, "40L", m.RemainingStock)
	assert.Equal(t, "₹5000", m.TotalRevenue)
	assert.Equal(t, "₹800", m.PendingReceivables)
	assert.Equal(t, 1, m.PendingUpdates)

	rows := s.PendingRequests()
	assert.Len(t, rows, 1)
	assert.Equal(t, float64(1), rows[0].Difference())
	assert.Equal(t, "+1", FormatDifference(rows[0].Difference()))
}

func TestSnapshot_Metrics_FailedStock(t *testing.T) {
	s := NewSnapshot(TimeWindow{Mode: WindowToday})
	s.Invoices = InvoiceSummary{TotalAmount: nd(5000), TotalDue: nd(800)}
	s.Customers = []customer.Customer{{ID: "c1", IsActive: true}}
	s.Failures = []SourceFailure{{Source: SourceStock, Message: "boom"}}

	assert.True(t, s.TotalStock().IsZero())
	assert.True(t, s.RemainingStock().IsZero())
	assert.Equal(t, "0L", s.Metrics().TotalStock)
	assert.Equal(t, "₹5000", s.Metrics().TotalRevenue)
	assert.Equal(t, 1, s.Metrics().DegradedSourceCount)
	assert.True(t, s.Failed(SourceStock))
	assert.False(t, s.Failed(SourceInvoices))
}

func TestSnapshot_PartialTotals(t *testing.T) {
	s := NewSnapshot(TimeWindow{})
	s.Invoices = InvoiceSummary{TotalAmount: nd(1200)}

	assert.Equal(t, "1200", s.TotalRevenue().String())
	assert.True(t, s.PendingReceivables().IsZero())
}

func TestSnapshot_PendingRequestsSkipsReviewed(t *testing.T) {
	s := NewSnapshot(TimeWindow{})
	s.QuantityUpdates = []quantityupdate.Request{
		{ID: "a", Status: quantityupdate.StatusAccepted},
		{ID: "b", Status: quantityupdate.StatusPending},
		{ID: "c", Status: quantityupdate.StatusRejected},
	}

	rows := s.PendingRequests()
	assert.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].ID)
}
