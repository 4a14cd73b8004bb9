package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	errNotFound   = errors.New("not found")
	errNotPending = errors.New("quantity update is not pending")
	errStale      = errors.New("quantity update was modified")
)

type ref struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type mockCustomer struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	MilkType    ref       `json:"milkType"`
	Subcategory ref       `json:"subcategory"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type mockQuantityUpdate struct {
	ID              string  `json:"_id"`
	Customer        ref     `json:"customer"`
	Date            string  `json:"date"`
	TimeOfDay       string  `json:"timeOfDay"`
	MilkType        ref     `json:"milkType"`
	Subcategory     ref     `json:"subcategory"`
	OldQuantity     float64 `json:"oldQuantity"`
	NewQuantity     float64 `json:"newQuantity"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejectionReason"`
	LastUpdated     string  `json:"lastUpdated"`
}

type stockRecord struct {
	Date         string          `json:"date"`
	StockIn      decimal.Decimal `json:"stockIn"`
	StockOut     decimal.Decimal `json:"stockOut"`
	CurrentStock decimal.Decimal `json:"currentStock"`
}

type customerFilter struct {
	Search      string
	MilkType    string
	Subcategory string
	Status      string
	SortField   string
	SortOrder   string
	Page        int
	Limit       int
}

type customerPage struct {
	Customers      []mockCustomer `json:"customers"`
	TotalCustomers int            `json:"totalCustomers"`
	TotalPages     int            `json:"totalPages"`
	CurrentPage    int            `json:"currentPage"`
}

// milkCatalog is the fixed milk type and subcategory tree
var milkCatalog = []struct {
	milkType      ref
	subcategories []ref
}{
	{ref{"mt-cow", "Cow"}, []ref{{"sc-cow-full", "Full Cream"}, {"sc-cow-toned", "Toned"}}},
	{ref{"mt-buffalo", "Buffalo"}, []ref{{"sc-buf-regular", "Regular"}, {"sc-buf-a2", "A2"}}},
	{ref{"mt-goat", "Goat"}, []ref{{"sc-goat-raw", "Raw"}}},
}

var reasons = []string{
	"Guests visiting this week",
	"Travelling out of town",
	"Need extra for festival sweets",
	"Reducing consumption",
	"Child started school lunch",
}

// store holds the fake upstream data
type store struct {
	mu        sync.Mutex
	customers []mockCustomer
	updates   []mockQuantityUpdate
	stock     []stockRecord
	invoiced  decimal.Decimal
	due       decimal.Decimal
	now       func() time.Time
}

// newStore seeds customers, quantity updates and 60 days of stock around now
func newStore(faker *gofakeit.Faker, customers int, now time.Time) *store {
	s := &store{now: time.Now}
	today := now.Truncate(24 * time.Hour)

	for i := 0; i < customers; i++ {
		milk := milkCatalog[faker.IntRange(0, len(milkCatalog)-1)]
		sub := milk.subcategories[faker.IntRange(0, len(milk.subcategories)-1)]
		s.customers = append(s.customers, mockCustomer{
			ID:          fmt.Sprintf("cust-%04d", i+1),
			Name:        faker.Name(),
			Phone:       faker.Phone(),
			Address:     faker.Address().Address,
			MilkType:    milk.milkType,
			Subcategory: sub,
			Quantity:    float64(faker.IntRange(1, 8)) / 2,
			Price:       float64(faker.IntRange(50, 90)),
			IsActive:    faker.Float64Range(0, 1) < 0.8,
			CreatedAt:   faker.DateRange(today.AddDate(-1, 0, 0), today),
		})
	}

	for i, c := range s.customers {
		if !c.IsActive || faker.Float64Range(0, 1) > 0.3 {
			continue
		}
		newQty := c.Quantity + float64(faker.IntRange(-2, 4))/2
		if newQty < 0 {
			newQty = 0
		}
		status := "pending"
		if faker.Float64Range(0, 1) < 0.25 {
			status = faker.RandomString([]string{"accepted", "rejected"})
		}
		updated := now.Add(-time.Duration(faker.IntRange(1, 600)) * time.Minute)
		s.updates = append(s.updates, mockQuantityUpdate{
			ID:          fmt.Sprintf("qu-%04d", i+1),
			Customer:    ref{ID: c.ID, Name: c.Name},
			Date:        today.AddDate(0, 0, -faker.IntRange(0, 10)).Format(dateLayout),
			TimeOfDay:   faker.RandomString([]string{"morning", "evening"}),
			MilkType:    c.MilkType,
			Subcategory: c.Subcategory,
			OldQuantity: c.Quantity,
			NewQuantity: newQty,
			Reason:      faker.RandomString(reasons),
			Status:      status,
			LastUpdated: updated.UTC().Format(time.RFC3339Nano),
		})
	}

	current := decimal.NewFromInt(int64(faker.IntRange(200, 400)))
	for d := 59; d >= 0; d-- {
		in := decimal.NewFromInt(int64(faker.IntRange(80, 160)))
		out := decimal.NewFromInt(int64(faker.IntRange(70, 150)))
		current = current.Add(in).Sub(out)
		if current.IsNegative() {
			current = decimal.Zero
		}
		s.stock = append(s.stock, stockRecord{
			Date:         today.AddDate(0, 0, -d).Format(dateLayout),
			StockIn:      in,
			StockOut:     out,
			CurrentStock: current,
		})
	}

	s.invoiced = decimal.NewFromFloat(faker.Float64Range(50000, 250000)).Round(2)
	s.due = s.invoiced.Mul(decimal.NewFromFloat(faker.Float64Range(0.05, 0.3))).Round(2)
	return s
}

func (s *store) listCustomers(f customerFilter) customerPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := make([]mockCustomer, 0, len(s.customers))
	for _, c := range s.customers {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(c.Phone, search) &&
			!strings.Contains(strings.ToLower(c.Address), search) {
			continue
		}
		if f.MilkType != "" && c.MilkType.ID != f.MilkType {
			continue
		}
		if f.Subcategory != "" && c.Subcategory.ID != f.Subcategory {
			continue
		}
		if f.Status == "active" && !c.IsActive || f.Status == "inactive" && c.IsActive {
			continue
		}
		matched = append(matched, c)
	}

	sortCustomers(matched, f.SortField, f.SortOrder == "desc")

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	start := min((page-1)*limit, len(matched))
	end := min(start+limit, len(matched))

	return customerPage{
		Customers:      append([]mockCustomer{}, matched[start:end]...),
		TotalCustomers: len(matched),
		TotalPages:     (len(matched) + limit - 1) / limit,
		CurrentPage:    page,
	}
}

func sortCustomers(items []mockCustomer, field string, desc bool) {
	less := func(a, b mockCustomer) bool {
		switch field {
		case "name":
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case "phone":
			return a.Phone < b.Phone
		case "address":
			return a.Address < b.Address
		case "quantity":
			return a.Quantity < b.Quantity
		case "price":
			return a.Price < b.Price
		case "isActive":
			return !a.IsActive && b.IsActive
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func (s *store) deleteCustomer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.customers {
		if c.ID == id {
			s.customers = append(s.customers[:i], s.customers[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

// stockSummary totals stock in over [start, end]; current stock is the last
// record in range
func (s *store) stockSummary(start, end string) (decimal.Decimal, decimal.Decimal, []stockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := decimal.Zero
	current := decimal.Zero
	records := []stockRecord{}
	for _, r := range s.stock {
		if (start != "" && r.Date < start) || (end != "" && r.Date > end) {
			continue
		}
		in = in.Add(r.StockIn)
		current = r.CurrentStock
		records = append(records, r)
	}
	return in, current, records
}

func (s *store) invoiceSummary() (decimal.Decimal, decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoiced, s.due
}

func (s *store) quantityUpdates(start, end string) []mockQuantityUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []mockQuantityUpdate{}
	for _, u := range s.updates {
		if (start != "" && u.Date < start) || (end != "" && u.Date > end) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// accept applies the new quantity when lastUpdated still matches
func (s *store) accept(id string, newQuantity float64, lastUpdated string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.pendingLocked(id)
	if err != nil {
		return err
	}
	if u.LastUpdated != lastUpdated {
		return errStale
	}
	for i := range s.customers {
		if s.customers[i].ID == u.Customer.ID {
			s.customers[i].Quantity = newQuantity
		}
	}
	u.Status = "accepted"
	s.touchLocked(u)
	return nil
}

func (s *store) reject(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.pendingLocked(id)
	if err != nil {
		return err
	}
	u.Status = "rejected"
	u.RejectionReason = &reason
	s.touchLocked(u)
	return nil
}

func (s *store) pendingLocked(id string) (*mockQuantityUpdate, error) {
	for i := range s.updates {
		if s.updates[i].ID != id {
			continue
		}
		if s.updates[i].Status != "pending" {
			return nil, errNotPending
		}
		return &s.updates[i], nil
	}
	return nil, errNotFound
}

func (s *store) touchLocked(u *mockQuantityUpdate) {
	u.LastUpdated = s.now().UTC().Format(time.RFC3339Nano)
}
