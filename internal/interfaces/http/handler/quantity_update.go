package handler

import (
	"github.com/gin-gonic/gin"
	appdashboard "github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/application/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/application/review"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/dto"
)

// QuantityUpdateHandler reviews pending quantity update requests
type QuantityUpdateHandler struct {
	BaseHandler
	dashboard *appdashboard.DashboardService
	engine    *review.Engine
}

// NewQuantityUpdateHandler creates a new QuantityUpdateHandler
func NewQuantityUpdateHandler(dashboard *appdashboard.DashboardService, engine *review.Engine) *QuantityUpdateHandler {
	return &QuantityUpdateHandler{dashboard: dashboard, engine: engine}
}

// ReviewResponse is returned after a successful review action
type ReviewResponse struct {
	RequestID string             `json:"requestId"`
	Action    string             `json:"action"`
	Dashboard *appdashboard.View `json:"dashboard,omitempty"`
}

// Accept answers POST /api/v1/quantity-updates/:id/accept
func (h *QuantityUpdateHandler) Accept(c *gin.Context) {
	req, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := h.engine.Accept(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.reviewed(req.ID, quantityupdate.AuditAccepted))
}

// Reject answers POST /api/v1/quantity-updates/:id/reject
func (h *QuantityUpdateHandler) Reject(c *gin.Context) {
	var body dto.RejectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}
	req, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := h.engine.Reject(c.Request.Context(), req, body.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.reviewed(req.ID, quantityupdate.AuditRejected))
}

// BeginDraft answers POST /api/v1/quantity-updates/reason-draft
func (h *QuantityUpdateHandler) BeginDraft(c *gin.Context) {
	var body dto.BeginDraftRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}
	if _, err := h.engine.BeginRejection(body.RequestID); err != nil {
		h.HandleError(c, err)
		return
	}
	draft, _ := h.engine.Draft()
	h.Created(c, draft)
}

// UpdateDraft answers PUT /api/v1/quantity-updates/reason-draft
func (h *QuantityUpdateHandler) UpdateDraft(c *gin.Context) {
	var body dto.UpdateDraftRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.engine.UpdateDraft(body.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	draft, _ := h.engine.Draft()
	h.Success(c, draft)
}

// CancelDraft answers DELETE /api/v1/quantity-updates/reason-draft
func (h *QuantityUpdateHandler) CancelDraft(c *gin.Context) {
	h.engine.CancelRejection()
	h.NoContent(c)
}

// GetDraft answers GET /api/v1/quantity-updates/reason-draft
func (h *QuantityUpdateHandler) GetDraft(c *gin.Context) {
	draft, ok := h.engine.Draft()
	if !ok {
		h.HandleError(c, quantityupdate.ErrNoActiveDraft)
		return
	}
	h.Success(c, draft)
}

// SubmitDraft answers POST /api/v1/quantity-updates/reason-draft/submit
func (h *QuantityUpdateHandler) SubmitDraft(c *gin.Context) {
	draft, err := h.engine.SubmitRejection(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.reviewed(draft.RequestID, quantityupdate.AuditRejected))
}

// Audit answers GET /api/v1/quantity-updates/audit
func (h *QuantityUpdateHandler) Audit(c *gin.Context) {
	var q dto.AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}

	entries, total, err := h.engine.AuditLog(c.Request.Context(), quantityupdate.AuditFilter{
		RequestID: q.RequestID,
		Action:    quantityupdate.AuditAction(q.Action),
		Limit:     q.PageSize,
		Offset:    (q.Page - 1) * q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, q.Page, q.PageSize)
}

// lookup finds the path request in the current dashboard snapshot
func (h *QuantityUpdateHandler) lookup(c *gin.Context) (quantityupdate.Request, bool) {
	id := c.Param("id")
	if id == "" {
		h.HandleError(c, quantityupdate.ErrMissingID)
		return quantityupdate.Request{}, false
	}
	req, ok := h.dashboard.FindRequest(id)
	if !ok {
		h.HandleError(c, shared.ErrNotFound)
		return quantityupdate.Request{}, false
	}
	return req, true
}

func (h *QuantityUpdateHandler) reviewed(id string, action quantityupdate.AuditAction) ReviewResponse {
	resp := ReviewResponse{RequestID: id, Action: string(action)}
	if view, ok := h.dashboard.Current(); ok {
		resp.Dashboard = &view
	}
	return resp
}
