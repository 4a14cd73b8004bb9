package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
)

// The upstream backend is loose about shapes: references arrive either as a
// bare id or as a populated object, numbers sometimes arrive quoted, and
// whole sections may be missing. The wire types below absorb that and map
// onto domain types with documented defaults.

// wireRef accepts "id", {"_id": "...", "name": "..."} or {"id": ...}
type wireRef customer.Ref

func (r *wireRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = wireRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = wireRef{ID: id}
		return nil
	}
	var obj struct {
		MongoID wireString `json:"_id"`
		ID      wireString `json:"id"`
		Name    string     `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	id := string(obj.MongoID)
	if id == "" {
		id = string(obj.ID)
	}
	*r = wireRef{ID: id, Name: obj.Name}
	return nil
}

// wireString accepts a string or any scalar, keeping its literal text
type wireString string

func (s *wireString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = wireString(v)
		return nil
	}
	*s = wireString(data)
	return nil
}

// wireNumber accepts a JSON number or a numeric string; anything else is 0
type wireNumber float64

func (n *wireNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = wireNumber(f)
	return nil
}

// wireBool accepts true/false, "true"/"false", or "active"/"inactive"
type wireBool bool

func (b *wireBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = wireBool(t)
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		*b = wireBool(s == "true" || s == "active" || s == "1")
	case float64:
		*b = wireBool(t != 0)
	default:
		*b = false
	}
	return nil
}

// wireTime accepts RFC 3339 timestamps or plain dates; unparseable is zero
type wireTime time.Time

func (t *wireTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = wireTime{}
		return nil
	}
	*t = wireTime(parseTime(s))
	return nil
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, dashboard.DateLayout} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

type wireCustomer struct {
	MongoID     wireString `json:"_id"`
	ID          wireString `json:"id"`
	Name        string     `json:"name"`
	Phone       wireString `json:"phone"`
	Address     string     `json:"address"`
	MilkType    wireRef    `json:"milkType"`
	Subcategory wireRef    `json:"subcategory"`
	Quantity    wireNumber `json:"quantity"`
	Price       wireNumber `json:"price"`
	IsActive    wireBool   `json:"isActive"`
	CreatedAt   wireTime   `json:"createdAt"`
}

func (w wireCustomer) toDomain() customer.Customer {
	id := string(w.MongoID)
	if id == "" {
		id = string(w.ID)
	}
	return customer.Customer{
		ID:          id,
		Name:        w.Name,
		Phone:       string(w.Phone),
		Address:     w.Address,
		MilkType:    customer.Ref(w.MilkType),
		Subcategory: customer.Ref(w.Subcategory),
		Quantity:    float64(w.Quantity),
		Price:       float64(w.Price),
		IsActive:    bool(w.IsActive),
		CreatedAt:   time.Time(w.CreatedAt),
	}
}

type wireCustomerPage struct {
	Customers      []wireCustomer `json:"customers"`
	TotalCustomers wireNumber     `json:"totalCustomers"`
	TotalPages     wireNumber     `json:"totalPages"`
	CurrentPage    wireNumber     `json:"currentPage"`
}

// decodeCustomerPage accepts the paged envelope or a bare array
func decodeCustomerPage(body []byte) (wireCustomerPage, error) {
	var page wireCustomerPage
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &page.Customers); err != nil {
			return page, fmt.Errorf("decoding customers: %w", err)
		}
		return page, nil
	}
	if err := decodeBody(body, &page); err != nil {
		return page, fmt.Errorf("decoding customers: %w", err)
	}
	return page, nil
}

func (p wireCustomerPage) toResult(q customer.Query) customer.QueryResult {
	items := make([]customer.Customer, 0, len(p.Customers))
	for _, c := range p.Customers {
		items = append(items, c.toDomain())
	}
	total := int(p.TotalCustomers)
	if total < len(items) {
		total = len(items)
	}
	pages := int(p.TotalPages)
	if pages == 0 && total > 0 && q.PageSize > 0 {
		pages = (total + q.PageSize - 1) / q.PageSize
	}
	page := int(p.CurrentPage)
	if page == 0 {
		page = q.Page
	}
	return customer.QueryResult{
		Items:      items,
		TotalItems: total,
		TotalPages: pages,
		Page:       page,
	}
}

type wireInvoiceDashboard struct {
	Summary struct {
		TotalAmount decimal.NullDecimal `json:"totalAmount"`
		TotalDue    decimal.NullDecimal `json:"totalDue"`
	} `json:"summary"`
}

func (w wireInvoiceDashboard) toDomain() dashboard.InvoiceSummary {
	return dashboard.InvoiceSummary{
		TotalAmount: w.Summary.TotalAmount,
		TotalDue:    w.Summary.TotalDue,
	}
}

type wireStockRecord struct {
	Date         wireTime            `json:"date"`
	StockIn      decimal.NullDecimal `json:"stockIn"`
	StockOut     decimal.NullDecimal `json:"stockOut"`
	CurrentStock decimal.NullDecimal `json:"currentStock"`
}

type wireStockSummary struct {
	Totals struct {
		StockIn      decimal.NullDecimal `json:"stockIn"`
		CurrentStock decimal.NullDecimal `json:"currentStock"`
	} `json:"totals"`
	Records []wireStockRecord `json:"records"`
}

func (w wireStockSummary) toDomain() dashboard.StockSummary {
	records := make([]dashboard.StockRecord, 0, len(w.Records))
	for _, r := range w.Records {
		records = append(records, dashboard.StockRecord{
			Date:         time.Time(r.Date),
			StockIn:      r.StockIn.Decimal,
			StockOut:     r.StockOut.Decimal,
			CurrentStock: r.CurrentStock.Decimal,
		})
	}
	return dashboard.StockSummary{
		Totals: dashboard.StockTotals{
			StockIn:      w.Totals.StockIn,
			CurrentStock: w.Totals.CurrentStock,
		},
		Records: records,
	}
}

type wireQuantityUpdate struct {
	MongoID         wireString `json:"_id"`
	ID              wireString `json:"id"`
	Customer        wireRef    `json:"customer"`
	Date            wireTime   `json:"date"`
	TimeOfDay       string     `json:"timeOfDay"`
	DeliveryTime    string     `json:"deliveryTime"`
	MilkType        wireRef    `json:"milkType"`
	Subcategory     wireRef    `json:"subcategory"`
	OldQuantity     wireNumber `json:"oldQuantity"`
	NewQuantity     wireNumber `json:"newQuantity"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejectionReason"`
	LastUpdated     wireString `json:"lastUpdated"`
}

func (w wireQuantityUpdate) toDomain() quantityupdate.Request {
	id := string(w.MongoID)
	if id == "" {
		id = string(w.ID)
	}
	slot := strings.ToLower(strings.TrimSpace(w.TimeOfDay))
	if slot == "" {
		slot = strings.ToLower(strings.TrimSpace(w.DeliveryTime))
	}
	status := quantityupdate.Status(strings.ToLower(strings.TrimSpace(w.Status)))
	if status == "" {
		status = quantityupdate.StatusPending
	}
	return quantityupdate.Request{
		ID:              id,
		Customer:        customer.Ref(w.Customer),
		Date:            time.Time(w.Date),
		TimeOfDay:       quantityupdate.TimeOfDay(slot),
		MilkType:        customer.Ref(w.MilkType),
		Subcategory:     customer.Ref(w.Subcategory),
		OldQuantity:     float64(w.OldQuantity),
		NewQuantity:     float64(w.NewQuantity),
		Reason:          w.Reason,
		Status:          status,
		RejectionReason: w.RejectionReason,
		LastUpdated:     string(w.LastUpdated),
	}
}

// decodeQuantityUpdates accepts {"data": [...]} or a bare array
func decodeQuantityUpdates(body []byte) ([]quantityupdate.Request, error) {
	var items []wireQuantityUpdate
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decoding quantity updates: %w", err)
		}
	} else {
		var envelope struct {
			Data []wireQuantityUpdate `json:"data"`
		}
		if err := decodeBody(body, &envelope); err != nil {
			return nil, fmt.Errorf("decoding quantity updates: %w", err)
		}
		items = envelope.Data
	}

	out := make([]quantityupdate.Request, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	return out, nil
}

type acceptBody struct {
	NewQuantity float64 `json:"newQuantity"`
	LastUpdated string  `json:"lastUpdated"`
}

type rejectBody struct {
	Reason string `json:"reason"`
}

// decodeBody decodes JSON, treating an empty body as an empty object
func decodeBody(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
