package customer

import (
	"strings"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
)

// StatusFilter restricts the directory to active or inactive customers
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
)

// IsValid checks if the filter is a known StatusFilter
func (s StatusFilter) IsValid() bool {
	switch s {
	case StatusAll, StatusActive, StatusInactive:
		return true
	}
	return false
}

// SortOrder is the direction of the directory sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Flip returns the opposite order
func (o SortOrder) Flip() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Defaults for a fresh directory query
const (
	DefaultPageSize  = 10
	MaxPageSize      = 100
	DefaultSortField = "createdAt"
)

// SortFields contains allowed sort fields for the customer directory
var SortFields = map[string]bool{
	"name":      true,
	"phone":     true,
	"address":   true,
	"quantity":  true,
	"price":     true,
	"isActive":  true,
	"createdAt": true,
}

var (
	ErrSubcategoryWithoutMilkType = shared.NewDomainError("VALIDATION_ERROR", "Subcategory filter requires a milk type filter")
	ErrInvalidSortField           = shared.NewDomainError("VALIDATION_ERROR", "Unsupported sort field")
	ErrInvalidStatusFilter        = shared.NewDomainError("VALIDATION_ERROR", "Status filter must be all, active or inactive")
	ErrInvalidPage                = shared.NewDomainError("VALIDATION_ERROR", "Page must be at least 1")
)

// Query is one complete directory request. Every With* method returns a new
// Query; a Query is never modified after it has been issued.
type Query struct {
	Page        int          `json:"page"`
	PageSize    int          `json:"pageSize"`
	Search      string       `json:"search"`
	SortField   string       `json:"sortField"`
	SortOrder   SortOrder    `json:"sortOrder"`
	MilkType    string       `json:"milkType"`
	Subcategory string       `json:"subcategory"`
	Status      StatusFilter `json:"status"`
}

// NewQuery returns the first-page query with the given page size
func NewQuery(pageSize int) Query {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Query{
		Page:      1,
		PageSize:  pageSize,
		SortField: DefaultSortField,
		SortOrder: SortDesc,
		Status:    StatusAll,
	}
}

// WithSearch sets the search text and returns to the first page
func (q Query) WithSearch(search string) Query {
	search = strings.TrimSpace(search)
	if search == q.Search {
		return q
	}
	q.Search = search
	q.Page = 1
	return q
}

// WithMilkType sets or clears the milk type filter. The subcategory filter
// always belongs to the previous milk type, so it is dropped.
func (q Query) WithMilkType(milkType string) Query {
	milkType = strings.TrimSpace(milkType)
	if milkType == q.MilkType {
		return q
	}
	q.MilkType = milkType
	q.Subcategory = ""
	q.Page = 1
	return q
}

// WithSubcategory sets or clears the subcategory filter
func (q Query) WithSubcategory(subcategory string) (Query, error) {
	subcategory = strings.TrimSpace(subcategory)
	if subcategory != "" && q.MilkType == "" {
		return q, ErrSubcategoryWithoutMilkType
	}
	q.Subcategory = subcategory
	q.Page = 1
	return q, nil
}

// WithStatus sets the status filter
func (q Query) WithStatus(status StatusFilter) (Query, error) {
	if status == "" {
		status = StatusAll
	}
	if !status.IsValid() {
		return q, ErrInvalidStatusFilter
	}
	q.Status = status
	q.Page = 1
	return q, nil
}

// ToggleSort applies a click on a sort header. The active field flips its
// order; a new field starts ascending on the first page.
func (q Query) ToggleSort(field string) (Query, error) {
	if !SortFields[field] {
		return q, ErrInvalidSortField
	}
	if field == q.SortField {
		q.SortOrder = q.SortOrder.Flip()
		return q, nil
	}
	q.SortField = field
	q.SortOrder = SortAsc
	q.Page = 1
	return q, nil
}

// WithPage moves to page
func (q Query) WithPage(page int) (Query, error) {
	if page < 1 {
		return q, ErrInvalidPage
	}
	q.Page = page
	return q, nil
}

// WithPageSize changes the page size and returns to the first page
func (q Query) WithPageSize(size int) Query {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	q.PageSize = size
	q.Page = 1
	return q
}

// QueryResult is one page of results, always derived from a single backend response
type QueryResult struct {
	Items      []Customer `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
	Page       int        `json:"page"`
}

// IDs returns the identifiers of the items on this page
func (r QueryResult) IDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, c := range r.Items {
		ids = append(ids, c.ID)
	}
	return ids
}
