package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appdashboard "github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/application/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/dto"
)

// DashboardHandler serves the metrics dashboard
type DashboardHandler struct {
	BaseHandler
	service *appdashboard.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service *appdashboard.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get answers GET /api/v1/dashboard. With a mode the window is selected and
// aggregated; without one the current view is returned, aggregating today on
// first use.
func (h *DashboardHandler) Get(c *gin.Context) {
	var q dto.DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	if q.Mode == "" && q.Start == "" && q.End == "" {
		if view, ok := h.service.Current(); ok {
			h.Success(c, view)
			return
		}
	}

	mode, err := dashboard.ParseWindowMode(q.Mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	explicit, err := parseRange(q.Start, q.End)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	// A bare range means custom
	if q.Mode == "" && explicit != nil {
		mode = dashboard.WindowCustom
	}

	view, err := h.service.SelectWindow(c.Request.Context(), mode, explicit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Refresh answers POST /api/v1/dashboard/refresh
func (h *DashboardHandler) Refresh(c *gin.Context) {
	view, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// parseRange returns nil when neither bound is given. Dates were format
// checked by binding, so a parse failure here is a half-open range.
func parseRange(start, end string) (*dashboard.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, dashboard.ErrCustomRangeRequired
	}
	s, err := time.Parse(dashboard.DateLayout, start)
	if err != nil {
		return nil, dashboard.ErrCustomRangeRequired
	}
	e, err := time.Parse(dashboard.DateLayout, end)
	if err != nil {
		return nil, dashboard.ErrCustomRangeRequired
	}
	return &dashboard.DateRange{Start: s, End: e}, nil
}
