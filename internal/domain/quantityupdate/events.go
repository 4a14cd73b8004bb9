package quantityupdate

import "github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"

// Aggregate type constant for quantity update requests
const AggregateTypeQuantityUpdate = "QuantityUpdateRequest"

// Quantity update event type constants
const (
	EventTypeQuantityUpdateAccepted = "QuantityUpdateAccepted"
	EventTypeQuantityUpdateRejected = "QuantityUpdateRejected"
)

// QuantityUpdateAcceptedEvent is raised after the backend acknowledged an accept
type QuantityUpdateAcceptedEvent struct {
	shared.BaseDomainEvent
	RequestID   string  `json:"request_id"`
	CustomerID  string  `json:"customer_id"`
	OldQuantity float64 `json:"old_quantity"`
	NewQuantity float64 `json:"new_quantity"`
}

// NewQuantityUpdateAcceptedEvent creates a new QuantityUpdateAcceptedEvent
func NewQuantityUpdateAcceptedEvent(r Request) *QuantityUpdateAcceptedEvent {
	return &QuantityUpdateAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuantityUpdateAccepted, AggregateTypeQuantityUpdate, r.ID),
		RequestID:       r.ID,
		CustomerID:      r.Customer.ID,
		OldQuantity:     r.OldQuantity,
		NewQuantity:     r.NewQuantity,
	}
}

// EventType returns the event type name
func (e *QuantityUpdateAcceptedEvent) EventType() string {
	return EventTypeQuantityUpdateAccepted
}

// QuantityUpdateRejectedEvent is raised after the backend acknowledged a reject
type QuantityUpdateRejectedEvent struct {
	shared.BaseDomainEvent
	RequestID  string `json:"request_id"`
	CustomerID string `json:"customer_id"`
	Reason     string `json:"reason"`
}

// NewQuantityUpdateRejectedEvent creates a new QuantityUpdateRejectedEvent
func NewQuantityUpdateRejectedEvent(r Request, reason string) *QuantityUpdateRejectedEvent {
	return &QuantityUpdateRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuantityUpdateRejected, AggregateTypeQuantityUpdate, r.ID),
		RequestID:       r.ID,
		CustomerID:      r.Customer.ID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *QuantityUpdateRejectedEvent) EventType() string {
	return EventTypeQuantityUpdateRejected
}
