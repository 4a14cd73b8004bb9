package dashboard

import (
	"context"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Refresher re-aggregates the current dashboard window
type Refresher interface {
	Refresh(ctx context.Context) (View, error)
}

// ReviewEventHandler refreshes the dashboard after a quantity update is reviewed
type ReviewEventHandler struct {
	refresher Refresher
	logger    *zap.Logger
}

// NewReviewEventHandler creates a new ReviewEventHandler
func NewReviewEventHandler(refresher Refresher, logger *zap.Logger) *ReviewEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewEventHandler{refresher: refresher, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ReviewEventHandler) EventTypes() []string {
	return []string{
		quantityupdate.EventTypeQuantityUpdateAccepted,
		quantityupdate.EventTypeQuantityUpdateRejected,
	}
}

// Handle re-aggregates the dashboard for a reviewed request
func (h *ReviewEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	logger.WithLogger(ctx, h.logger).Debug("Refreshing dashboard after review",
		zap.String("event_type", event.EventType()),
		zap.String("request_id", event.AggregateID()),
	)
	_, err := h.refresher.Refresh(ctx)
	return err
}
