package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/handler"
)

// Handlers holds every API handler. Nil handlers leave their routes out.
type Handlers struct {
	Health         *handler.HealthHandler
	Dashboard      *handler.DashboardHandler
	QuantityUpdate *handler.QuantityUpdateHandler
	Customer       *handler.CustomerHandler
	Directory      *handler.DirectoryHandler
}

// Mount registers /health and the versioned API on engine
func Mount(engine *gin.Engine, h Handlers, opts ...RouterOption) *Router {
	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	r := NewRouter(engine, opts...)
	if h.Dashboard != nil {
		r.Register(DashboardRoutes(h.Dashboard))
	}
	if h.QuantityUpdate != nil {
		r.Register(QuantityUpdateRoutes(h.QuantityUpdate))
	}
	if h.Customer != nil {
		r.Register(CustomerRoutes(h.Customer))
	}
	if h.Directory != nil {
		r.Register(DirectoryRoutes(h.Directory))
	}
	r.Setup()
	return r
}

// DashboardRoutes builds /dashboard
func DashboardRoutes(h *handler.DashboardHandler) *DomainGroup {
	return NewDomainGroup("dashboard", "/dashboard").
		GET("", h.Get).
		POST("/refresh", h.Refresh)
}

// QuantityUpdateRoutes builds /quantity-updates
func QuantityUpdateRoutes(h *handler.QuantityUpdateHandler) *DomainGroup {
	g := NewDomainGroup("quantity-updates", "/quantity-updates").
		GET("/audit", h.Audit).
		POST("/:id/accept", h.Accept).
		POST("/:id/reject", h.Reject)

	g.Group("reason-draft", "/reason-draft").
		GET("", h.GetDraft).
		POST("", h.BeginDraft).
		PUT("", h.UpdateDraft).
		DELETE("", h.CancelDraft).
		POST("/submit", h.SubmitDraft)
	return g
}

// CustomerRoutes builds /customers
func CustomerRoutes(h *handler.CustomerHandler) *DomainGroup {
	return NewDomainGroup("customers", "/customers").
		GET("", h.List)
}

// DirectoryRoutes builds /directory/sessions
func DirectoryRoutes(h *handler.DirectoryHandler) *DomainGroup {
	return NewDomainGroup("directory", "/directory/sessions").
		POST("", h.Create).
		GET("/:id", h.Get).
		DELETE("/:id", h.Delete).
		POST("/:id/search", h.Search).
		POST("/:id/clear-search", h.ClearSearch).
		POST("/:id/filters", h.Filters).
		POST("/:id/sort", h.Sort).
		POST("/:id/page", h.Page).
		POST("/:id/selection", h.Selection).
		POST("/:id/select-all", h.SelectAll).
		POST("/:id/toggle/:customerId", h.Toggle).
		POST("/:id/bulk-delete", h.BulkDelete)
}
