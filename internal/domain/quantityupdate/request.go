package quantityupdate

import (
	"strings"
	"time"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
)

// Status represents the review status of a quantity update request
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusAccepted || target == StatusRejected
	case StatusAccepted, StatusRejected:
		return false // Terminal states
	}
	return false
}

// TimeOfDay is the delivery slot a request applies to
type TimeOfDay string

const (
	Morning TimeOfDay = "morning"
	Evening TimeOfDay = "evening"
)

var (
	ErrNotPending     = shared.NewDomainError("INVALID_STATE", "Quantity update request is no longer pending")
	ErrReasonRequired = shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	ErrMissingID      = shared.NewDomainError("VALIDATION_ERROR", "Quantity update request ID is required")
	ErrInvalidAmount  = shared.NewDomainError("VALIDATION_ERROR", "New quantity must be a non-negative number")
	ErrStale          = shared.NewDomainError("CONFLICT", "Quantity update request changed since it was loaded")
)

// Request is a customer-originated proposal to change a scheduled delivery
// quantity. Requests are created upstream and only move out of pending
// through the review engine.
type Request struct {
	ID              string       `json:"id"`
	Customer        customer.Ref `json:"customer"`
	Date            time.Time    `json:"date"`
	TimeOfDay       TimeOfDay    `json:"timeOfDay"`
	MilkType        customer.Ref `json:"milkType"`
	Subcategory     customer.Ref `json:"subcategory"`
	OldQuantity     float64      `json:"oldQuantity"`
	NewQuantity     float64      `json:"newQuantity"`
	Reason          string       `json:"reason"`
	Status          Status       `json:"status"`
	RejectionReason *string      `json:"rejectionReason"`
	// LastUpdated is the backend's version token, forwarded on accept and never interpreted here
	LastUpdated string `json:"lastUpdated"`
}

// Difference returns newQuantity - oldQuantity
func (r Request) Difference() float64 {
	return r.NewQuantity - r.OldQuantity
}

// IsPending reports whether the request can still be reviewed
func (r Request) IsPending() bool {
	return r.Status == StatusPending
}

// CheckAcceptable validates the request for an accept action
func (r Request) CheckAcceptable() error {
	if r.ID == "" {
		return ErrMissingID
	}
	if !r.Status.CanTransitionTo(StatusAccepted) {
		return ErrNotPending
	}
	if r.NewQuantity < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CheckRejectable validates the request and reason for a reject action.
// It returns the trimmed reason.
func (r Request) CheckRejectable(reason string) (string, error) {
	if r.ID == "" {
		return "", ErrMissingID
	}
	if !r.Status.CanTransitionTo(StatusRejected) {
		return "", ErrNotPending
	}
	return NormalizeReason(reason)
}

// NormalizeReason trims reason and refuses blank input
func NormalizeReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", ErrReasonRequired
	}
	return trimmed, nil
}

// Pending filters requests down to the reviewable ones, preserving order
func Pending(requests []Request) []Request {
	out := make([]Request, 0, len(requests))
	for _, r := range requests {
		if r.IsPending() {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the request with id
func Find(requests []Request, id string) (Request, bool) {
	for _, r := range requests {
		if r.ID == id {
			return r, true
		}
	}
	return Request{}, false
}
