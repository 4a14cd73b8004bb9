package backend

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
)

// Paths holds the upstream endpoint paths relative to the base URL
type Paths struct {
	Customers        string
	InvoiceDashboard string
	StockSummary     string
	QuantityUpdates  string
}

// DefaultPaths returns the upstream paths
func DefaultPaths() Paths {
	return Paths{
		Customers:        "/customers",
		InvoiceDashboard: "/invoices/dashboard",
		StockSummary:     "/stock/summary",
		QuantityUpdates:  "/quantity-updates",
	}
}

// Gateway adapts the upstream API to the domain ports
type Gateway struct {
	client             *Client
	paths              Paths
	customerFetchLimit int
}

// GatewayOption configures a Gateway
type GatewayOption func(*Gateway)

// WithPaths overrides the endpoint paths
func WithPaths(p Paths) GatewayOption {
	return func(g *Gateway) { g.paths = p }
}

// WithCustomerFetchLimit sets the page size used by All
func WithCustomerFetchLimit(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.customerFetchLimit = n
		}
	}
}

// NewGateway creates a new Gateway
func NewGateway(client *Client, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client:             client,
		paths:              DefaultPaths(),
		customerFetchLimit: 1000,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var (
	_ customer.Directory        = (*Gateway)(nil)
	_ quantityupdate.Gateway    = (*Gateway)(nil)
	_ dashboard.SummaryProvider = (*Gateway)(nil)
)

// List returns one page of customers matching q
func (g *Gateway) List(ctx context.Context, q customer.Query) (customer.QueryResult, error) {
	resp, err := g.client.Get(ctx, g.paths.Customers, customerParams(q))
	if err != nil {
		return customer.QueryResult{}, translate(err)
	}
	page, err := decodeCustomerPage(resp.Body)
	if err != nil {
		return customer.QueryResult{}, shared.ErrUpstream.WithCause(err)
	}
	return page.toResult(q), nil
}

// All returns every customer in one oversized page
func (g *Gateway) All(ctx context.Context) ([]customer.Customer, error) {
	params := map[string]string{
		"page":  "1",
		"limit": strconv.Itoa(g.customerFetchLimit),
	}
	resp, err := g.client.Get(ctx, g.paths.Customers, params)
	if err != nil {
		return nil, translate(err)
	}
	page, err := decodeCustomerPage(resp.Body)
	if err != nil {
		return nil, shared.ErrUpstream.WithCause(err)
	}
	out := make([]customer.Customer, 0, len(page.Customers))
	for _, c := range page.Customers {
		out = append(out, c.toDomain())
	}
	return out, nil
}

// Delete removes one customer
func (g *Gateway) Delete(ctx context.Context, id string) error {
	if id == "" {
		return shared.ErrInvalidInput
	}
	_, err := g.client.Delete(ctx, g.paths.Customers+"/"+id)
	return translate(err)
}

// InvoiceSummary returns the invoice dashboard totals
func (g *Gateway) InvoiceSummary(ctx context.Context) (dashboard.InvoiceSummary, error) {
	var w wireInvoiceDashboard
	if err := g.client.GetJSON(ctx, g.paths.InvoiceDashboard, nil, &w); err != nil {
		return dashboard.InvoiceSummary{}, translate(err)
	}
	return w.toDomain(), nil
}

// StockSummary returns the stock totals bounded by window
func (g *Gateway) StockSummary(ctx context.Context, window dashboard.TimeWindow) (dashboard.StockSummary, error) {
	var w wireStockSummary
	params := map[string]string{
		"startDate": window.StartParam(),
		"endDate":   window.EndParam(),
	}
	if err := g.client.GetJSON(ctx, g.paths.StockSummary, params, &w); err != nil {
		return dashboard.StockSummary{Records: []dashboard.StockRecord{}}, translate(err)
	}
	return w.toDomain(), nil
}

// ListBetween returns the quantity update requests dated within [start, end]
func (g *Gateway) ListBetween(ctx context.Context, start, end time.Time) ([]quantityupdate.Request, error) {
	params := map[string]string{
		"startDate": start.Format(dashboard.DateLayout),
		"endDate":   end.Format(dashboard.DateLayout),
	}
	resp, err := g.client.Get(ctx, g.paths.QuantityUpdates, params)
	if err != nil {
		return nil, translate(err)
	}
	out, err := decodeQuantityUpdates(resp.Body)
	if err != nil {
		return nil, shared.ErrUpstream.WithCause(err)
	}
	return out, nil
}

// Accept sends the accept write-back with the version token untouched
func (g *Gateway) Accept(ctx context.Context, id string, newQuantity float64, lastUpdated string) error {
	_, err := g.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   g.paths.QuantityUpdates + "/" + id + "/accept",
		Body:   acceptBody{NewQuantity: newQuantity, LastUpdated: lastUpdated},
	})
	return translate(err)
}

// Reject sends the reject write-back
func (g *Gateway) Reject(ctx context.Context, id string, reason string) error {
	_, err := g.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   g.paths.QuantityUpdates + "/" + id + "/reject",
		Body:   rejectBody{Reason: reason},
	})
	return translate(err)
}

func customerParams(q customer.Query) map[string]string {
	params := map[string]string{
		"page":      strconv.Itoa(q.Page),
		"limit":     strconv.Itoa(q.PageSize),
		"sortField": q.SortField,
		"sortOrder": string(q.SortOrder),
	}
	if q.Search != "" {
		params["search"] = q.Search
	}
	if q.MilkType != "" {
		params["milkType"] = q.MilkType
	}
	if q.Subcategory != "" {
		params["subcategory"] = q.Subcategory
	}
	if q.Status != "" && q.Status != customer.StatusAll {
		params["status"] = string(q.Status)
	}
	return params
}

// translate maps transport and status errors onto domain errors
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch StatusCodeOf(err) {
	case http.StatusNotFound:
		return shared.ErrNotFound.WithCause(err)
	case http.StatusConflict, http.StatusPreconditionFailed:
		return quantityupdate.ErrStale.WithCause(err)
	}
	return shared.ErrUpstream.WithCause(err)
}
