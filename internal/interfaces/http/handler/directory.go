package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/application/directory"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/logger"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/dto"
)

// DirectoryHandler drives per-session customer directory controllers
type DirectoryHandler struct {
	BaseHandler
	sessions *directory.SessionManager
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(sessions *directory.SessionManager) *DirectoryHandler {
	return &DirectoryHandler{sessions: sessions}
}

// BulkDeleteResponse carries per-id outcomes and the refreshed state
type BulkDeleteResponse struct {
	directory.BulkDeleteResult
	State directory.State `json:"state"`
}

// Create answers POST /api/v1/directory/sessions and loads the first page
func (h *DirectoryHandler) Create(c *gin.Context) {
	id, ctrl := h.sessions.Create()
	ctx := logger.WithSessionID(c.Request.Context(), id)
	state := ctrl.Load(ctx)
	h.Created(c, dto.SessionResponse{SessionID: id, State: state})
}

// Get answers GET /api/v1/directory/sessions/:id
func (h *DirectoryHandler) Get(c *gin.Context) {
	ctrl, _, ok := h.controller(c)
	if !ok {
		return
	}
	h.Success(c, ctrl.State())
}

// Delete answers DELETE /api/v1/directory/sessions/:id
func (h *DirectoryHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Search answers POST /sessions/:id/search. The fetch is debounced, so the
// returned state shows the pending search rather than its result.
func (h *DirectoryHandler) Search(c *gin.Context) {
	var body dto.SearchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}
	ctrl, _, ok := h.controller(c)
	if !ok {
		return
	}
	h.Success(c, ctrl.SetSearch(body.Text))
}

// ClearSearch answers POST /sessions/:id/clear-search
func (h *DirectoryHandler) ClearSearch(c *gin.Context) {
	ctrl, ctx, ok := h.controller(c)
	if !ok {
		return
	}
	h.Success(c, ctrl.ClearSearch(ctx))
}

// Filters answers POST /sessions/:id/filters
func (h *DirectoryHandler) Filters(c *gin.Context) {
	var body dto.FiltersRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}
	ctrl, ctx, ok := h.controller(c)
	if !ok {
		return
	}
	state, err := ctrl.SetFilters(ctx, directory.Filters{
		MilkType:    body.MilkType,
		Subcategory: body.Subcategory,
		Status:      customer.StatusFilter(body.Status),
	})
	h.respond(c, state, err)
}

// Sort answers POST /sessions/:id/sort
func (h *DirectoryHandler) Sort(c *gin.Context) {
	var body dto.SortRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}
	ctrl, ctx, ok := h.controller(c)
	if !ok {
		return
	}
	state, err := ctrl.ToggleSort(ctx, body.Field)
	h.respond(c, state, err)
}

// Page answers POST /sessions/:id/page. A page size change returns to page one
// and wins over a page number sent alongside it.
func (h *DirectoryHandler) Page(c *gin.Context) {
	var body dto.PageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}
	if body.Page == 0 && body.PageSize == 0 {
		h.ErrorWithCode(c, dto.ErrCodeValidation, "page or pageSize is required")
		return
	}
	ctrl, ctx, ok := h.controller(c)
	if !ok {
		return
	}
	if body.PageSize > 0 {
		h.Success(c, ctrl.SetPageSize(ctx, body.PageSize))
		return
	}
	state, err := ctrl.SetPage(ctx, body.Page)
	h.respond(c, state, err)
}

// Selection answers POST /sessions/:id/selection
func (h *DirectoryHandler) Selection(c *gin.Context) {
	var body dto.SelectionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}
	ctrl, _, ok := h.controller(c)
	if !ok {
		return
	}
	h.Success(c, ctrl.SetSelectionMode(*body.Enabled))
}

// SelectAll answers POST /sessions/:id/select-all
func (h *DirectoryHandler) SelectAll(c *gin.Context) {
	ctrl, _, ok := h.controller(c)
	if !ok {
		return
	}
	state, err := ctrl.SelectAll()
	h.respond(c, state, err)
}

// Toggle answers POST /sessions/:id/toggle/:customerId
func (h *DirectoryHandler) Toggle(c *gin.Context) {
	ctrl, _, ok := h.controller(c)
	if !ok {
		return
	}
	state, err := ctrl.Toggle(c.Param("customerId"))
	h.respond(c, state, err)
}

// BulkDelete answers POST /sessions/:id/bulk-delete. A partial failure is
// answered with 207 and the per-id outcome.
func (h *DirectoryHandler) BulkDelete(c *gin.Context) {
	ctrl, ctx, ok := h.controller(c)
	if !ok {
		return
	}
	result, err := ctrl.BulkDelete(ctx)
	resp := BulkDeleteResponse{BulkDeleteResult: result, State: ctrl.State()}
	switch {
	case err == nil:
		h.Success(c, resp)
	case errors.Is(err, shared.ErrPartialFailure):
		_ = c.Error(err)
		body := dto.NewErrorResponseWithRequestID(dto.ErrCodePartialFailure, err.Error(), getRequestID(c))
		body.Data = resp
		c.JSON(dto.GetHTTPStatus(dto.ErrCodePartialFailure), body)
	default:
		h.HandleError(c, err)
	}
}

// controller resolves the path session; on failure the response is written
func (h *DirectoryHandler) controller(c *gin.Context) (*directory.Controller, context.Context, bool) {
	id := c.Param("id")
	ctrl, err := h.sessions.Get(id)
	if err != nil {
		h.HandleError(c, err)
		return nil, nil, false
	}
	return ctrl, logger.WithSessionID(c.Request.Context(), id), true
}

func (h *DirectoryHandler) respond(c *gin.Context, state directory.State, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}
