// Package review drives quantity update requests through accept and reject.
package review

import (
	"context"
	"errors"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/logger"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const lockKeyPrefix = "quantity-update:"

// RequestLookup finds a quantity update request in the currently loaded snapshot
type RequestLookup interface {
	FindRequest(id string) (quantityupdate.Request, bool)
}

// Engine performs accept and reject write-backs for pending requests.
// Local checks run before any upstream call; a failed call leaves the request
// pending. Actions on different requests are not serialized.
type Engine struct {
	gateway   quantityupdate.Gateway
	lookup    RequestLookup
	draft     *quantityupdate.DraftSlot
	locks     shared.ActionLockStore
	lockCfg   shared.ActionLockConfig
	audit     quantityupdate.AuditRepository
	publisher shared.EventPublisher
	metrics   *telemetry.DashboardMetrics
	logger    *zap.Logger
}

// NewEngine creates a new review Engine
func NewEngine(gateway quantityupdate.Gateway, lookup RequestLookup, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		gateway: gateway,
		lookup:  lookup,
		draft:   quantityupdate.NewDraftSlot(),
		lockCfg: shared.DefaultActionLockConfig(),
		logger:  logger,
	}
}

// SetActionLock guards each request id with a short lock while its action is in flight
func (e *Engine) SetActionLock(store shared.ActionLockStore, cfg shared.ActionLockConfig) {
	e.locks = store
	e.lockCfg = cfg
}

// SetAuditRepository records successful actions
func (e *Engine) SetAuditRepository(repo quantityupdate.AuditRepository) {
	e.audit = repo
}

// SetEventPublisher sets the event publisher for review events
func (e *Engine) SetEventPublisher(publisher shared.EventPublisher) {
	e.publisher = publisher
}

// SetMetrics sets the metrics recorder
func (e *Engine) SetMetrics(m *telemetry.DashboardMetrics) {
	e.metrics = m
}

// Accept approves a pending request, forwarding its lastUpdated token unchanged
func (e *Engine) Accept(ctx context.Context, req quantityupdate.Request) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "review", "accept",
		telemetry.WithAttribute(telemetry.SpanAttrRequestID, req.ID),
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, req.Customer.ID),
	)
	defer span.End()

	log := logger.WithLogger(ctx, e.logger).With(
		zap.String("request_id", req.ID),
		zap.String("action", string(quantityupdate.AuditAccepted)),
	)

	if err := req.CheckAcceptable(); err != nil {
		e.metrics.RecordReviewAction(ctx, string(quantityupdate.AuditAccepted), telemetry.OutcomeRefused)
		telemetry.AddEvent(span, telemetry.EventActionRefused, "reason", err.Error())
		log.Info("Accept refused", zap.Error(err))
		return err
	}

	err := e.withLock(ctx, req.ID, func() error {
		return e.gateway.Accept(ctx, req.ID, req.NewQuantity, req.LastUpdated)
	})
	if err != nil {
		e.recordFailure(ctx, quantityupdate.AuditAccepted, err)
		telemetry.RecordError(span, err)
		log.Warn("Accept failed", zap.Error(err))
		return err
	}

	e.draft.ClearIf(req.ID)
	e.metrics.RecordReviewAction(ctx, string(quantityupdate.AuditAccepted), telemetry.OutcomeSuccess)
	log.Info("Quantity update accepted",
		zap.String("customer_id", req.Customer.ID),
		zap.Float64("old_quantity", req.OldQuantity),
		zap.Float64("new_quantity", req.NewQuantity),
	)

	e.recordAudit(ctx, req, quantityupdate.AuditAccepted, "")
	e.publish(ctx, quantityupdate.NewQuantityUpdateAcceptedEvent(req))
	return nil
}

// Reject declines a pending request. The reason is trimmed and must not be blank.
func (e *Engine) Reject(ctx context.Context, req quantityupdate.Request, reason string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "review", "reject",
		telemetry.WithAttribute(telemetry.SpanAttrRequestID, req.ID),
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, req.Customer.ID),
	)
	defer span.End()

	log := logger.WithLogger(ctx, e.logger).With(
		zap.String("request_id", req.ID),
		zap.String("action", string(quantityupdate.AuditRejected)),
	)

	trimmed, err := req.CheckRejectable(reason)
	if err != nil {
		e.metrics.RecordReviewAction(ctx, string(quantityupdate.AuditRejected), telemetry.OutcomeRefused)
		telemetry.AddEvent(span, telemetry.EventActionRefused, "reason", err.Error())
		log.Info("Reject refused", zap.Error(err))
		return err
	}

	err = e.withLock(ctx, req.ID, func() error {
		return e.gateway.Reject(ctx, req.ID, trimmed)
	})
	if err != nil {
		e.recordFailure(ctx, quantityupdate.AuditRejected, err)
		telemetry.RecordError(span, err)
		log.Warn("Reject failed", zap.Error(err))
		return err
	}

	e.draft.ClearIf(req.ID)
	e.metrics.RecordReviewAction(ctx, string(quantityupdate.AuditRejected), telemetry.OutcomeSuccess)
	log.Info("Quantity update rejected",
		zap.String("customer_id", req.Customer.ID),
		zap.String("reason", trimmed),
	)

	e.recordAudit(ctx, req, quantityupdate.AuditRejected, trimmed)
	e.publish(ctx, quantityupdate.NewQuantityUpdateRejectedEvent(req, trimmed))
	return nil
}

// BeginRejection starts drafting a reason for requestID, replacing any other
// draft. The replaced draft, if any, is returned.
func (e *Engine) BeginRejection(requestID string) (*quantityupdate.ReasonDraft, error) {
	if requestID == "" {
		return nil, quantityupdate.ErrMissingID
	}
	if e.lookup != nil {
		req, ok := e.lookup.FindRequest(requestID)
		if !ok {
			return nil, shared.ErrNotFound
		}
		if !req.IsPending() {
			return nil, quantityupdate.ErrNotPending
		}
	}

	discarded := e.draft.Begin(requestID)
	if discarded != nil {
		e.logger.Debug("Discarded rejection draft",
			zap.String("request_id", discarded.RequestID),
			zap.String("replaced_by", requestID),
		)
	}
	return discarded, nil
}

// UpdateDraft replaces the draft reason text
func (e *Engine) UpdateDraft(text string) error {
	return e.draft.Update(text)
}

// CancelRejection discards the draft
func (e *Engine) CancelRejection() {
	e.draft.Cancel()
}

// Draft returns the current draft
func (e *Engine) Draft() (quantityupdate.ReasonDraft, bool) {
	return e.draft.Current()
}

// SubmitRejection rejects the drafted request with the drafted reason.
// The draft is cleared only when the rejection succeeds.
func (e *Engine) SubmitRejection(ctx context.Context) (quantityupdate.ReasonDraft, error) {
	draft, ok := e.draft.Current()
	if !ok {
		return quantityupdate.ReasonDraft{}, quantityupdate.ErrNoActiveDraft
	}
	if e.lookup == nil {
		return draft, shared.ErrNotFound
	}
	req, ok := e.lookup.FindRequest(draft.RequestID)
	if !ok {
		return draft, shared.ErrNotFound
	}
	if err := e.Reject(ctx, req, draft.Reason); err != nil {
		return draft, err
	}
	return draft, nil
}

// AuditLog lists recorded review actions, newest first
func (e *Engine) AuditLog(ctx context.Context, filter quantityupdate.AuditFilter) ([]quantityupdate.AuditEntry, int64, error) {
	if e.audit == nil {
		return []quantityupdate.AuditEntry{}, 0, nil
	}
	return e.audit.FindAll(ctx, filter)
}

func (e *Engine) withLock(ctx context.Context, requestID string, fn func() error) error {
	if e.locks == nil || !e.lockCfg.Enabled {
		return fn()
	}

	key := lockKeyPrefix + requestID
	acquired, err := e.locks.Acquire(ctx, key, e.lockCfg.TTL)
	if err != nil {
		// An unreachable lock store must not block reviews.
		logger.WithLogger(ctx, e.logger).Warn("Action lock unavailable, proceeding without it",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fn()
	}
	if !acquired {
		return shared.ErrConflict
	}
	defer func() {
		// Release must run even when the request context was cancelled.
		if err := e.locks.Release(context.WithoutCancel(ctx), key); err != nil {
			logger.WithLogger(ctx, e.logger).Warn("Failed to release action lock",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
		}
	}()
	return fn()
}

func (e *Engine) recordFailure(ctx context.Context, action quantityupdate.AuditAction, err error) {
	outcome := telemetry.OutcomeFailure
	if errors.Is(err, shared.ErrConflict) {
		outcome = telemetry.OutcomeConflict
	}
	e.metrics.RecordReviewAction(ctx, string(action), outcome)
}

func (e *Engine) recordAudit(ctx context.Context, req quantityupdate.Request, action quantityupdate.AuditAction, reason string) {
	if e.audit == nil {
		return
	}
	entry := &quantityupdate.AuditEntry{
		RequestID:   req.ID,
		CustomerID:  req.Customer.ID,
		Action:      action,
		OldQuantity: req.OldQuantity,
		NewQuantity: req.NewQuantity,
		Reason:      reason,
		Actor:       logger.GetActor(ctx),
	}
	if err := e.audit.Save(context.WithoutCancel(ctx), entry); err != nil {
		logger.WithLogger(ctx, e.logger).Error("Failed to record review audit entry",
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
	}
}

func (e *Engine) publish(ctx context.Context, event shared.DomainEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		logger.WithLogger(ctx, e.logger).Warn("Failed to publish review event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}
