package dto

import "time"

// DashboardQuery selects the dashboard window
type DashboardQuery struct {
	Mode  string `form:"mode" binding:"omitempty,window_mode"`
	Start string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End   string `form:"end" binding:"omitempty,datetime=2006-01-02"`
}

// RejectRequest carries a rejection reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// BeginDraftRequest starts a rejection draft
type BeginDraftRequest struct {
	RequestID string `json:"requestId" binding:"required"`
}

// UpdateDraftRequest replaces the draft text
type UpdateDraftRequest struct {
	Reason string `json:"reason"`
}

// AuditQuery filters the review audit log
type AuditQuery struct {
	RequestID string `form:"request_id"`
	Action    string `form:"action" binding:"omitempty,oneof=accepted rejected"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// CustomerListQuery is a direct customer directory query
type CustomerListQuery struct {
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Search      string `form:"search"`
	SortField   string `form:"sortField" binding:"omitempty,sort_field"`
	SortOrder   string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	MilkType    string `form:"milkType"`
	Subcategory string `form:"subcategory"`
	Status      string `form:"status" binding:"omitempty,oneof=all active inactive"`
}

// SearchRequest sets the directory search text
type SearchRequest struct {
	Text string `json:"text"`
}

// FiltersRequest replaces the directory filters
type FiltersRequest struct {
	MilkType    string `json:"milkType"`
	Subcategory string `json:"subcategory"`
	Status      string `json:"status" binding:"omitempty,oneof=all active inactive"`
}

// SortRequest toggles sorting on a field
type SortRequest struct {
	Field string `json:"field" binding:"required,sort_field"`
}

// PageRequest moves to a page or changes the page size
type PageRequest struct {
	Page     int `json:"page" binding:"omitempty,min=1"`
	PageSize int `json:"pageSize" binding:"omitempty,min=1,max=100"`
}

// SelectionRequest turns selection mode on or off
type SelectionRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SessionResponse is returned when a directory session is created
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	State     any    `json:"state"`
}

// HealthResponse reports service health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Time    time.Time         `json:"time"`
	Checks  map[string]string `json:"checks,omitempty"`
}
