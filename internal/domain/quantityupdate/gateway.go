package quantityupdate

import (
	"context"
	"time"
)

// Gateway defines the interface for the upstream quantity update endpoints
type Gateway interface {
	// ListBetween returns the requests dated within [start, end]
	ListBetween(ctx context.Context, start, end time.Time) ([]Request, error)

	// Accept applies newQuantity. lastUpdated must be the token read with the request;
	// the backend refuses the write if the request changed since.
	Accept(ctx context.Context, id string, newQuantity float64, lastUpdated string) error

	// Reject closes the request with reason
	Reject(ctx context.Context, id string, reason string) error
}

// AuditAction names a completed review action
type AuditAction string

const (
	AuditAccepted AuditAction = "accepted"
	AuditRejected AuditAction = "rejected"
)

// AuditEntry records one successful review action
type AuditEntry struct {
	ID          string      `json:"id"`
	RequestID   string      `json:"requestId"`
	CustomerID  string      `json:"customerId"`
	Action      AuditAction `json:"action"`
	OldQuantity float64     `json:"oldQuantity"`
	NewQuantity float64     `json:"newQuantity"`
	Reason      string      `json:"reason,omitempty"`
	Actor       string      `json:"actor,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// AuditFilter narrows audit listings
type AuditFilter struct {
	RequestID string
	Action    AuditAction
	Limit     int
	Offset    int
}

// AuditRepository defines the interface for review audit persistence
type AuditRepository interface {
	// Save appends an entry
	Save(ctx context.Context, entry *AuditEntry) error

	// FindAll lists entries newest first
	FindAll(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
}
