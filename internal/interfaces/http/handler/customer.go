package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/dto"
)

// CustomerHandler passes one-off directory queries through to the backend
type CustomerHandler struct {
	BaseHandler
	directory customer.Directory
	pageSize  int
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(directory customer.Directory, defaultPageSize int) *CustomerHandler {
	return &CustomerHandler{directory: directory, pageSize: defaultPageSize}
}

// List answers GET /api/v1/customers
func (h *CustomerHandler) List(c *gin.Context) {
	var params dto.CustomerListQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		h.BindError(c, err)
		return
	}

	q, err := buildQuery(customer.NewQuery(h.pageSize), params)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.directory.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, int64(result.TotalItems), result.Page, q.PageSize)
}

func buildQuery(q customer.Query, p dto.CustomerListQuery) (customer.Query, error) {
	var err error
	if p.PageSize > 0 {
		q = q.WithPageSize(p.PageSize)
	}
	q = q.WithSearch(p.Search).WithMilkType(p.MilkType)
	if q, err = q.WithSubcategory(p.Subcategory); err != nil {
		return q, err
	}
	if q, err = q.WithStatus(customer.StatusFilter(p.Status)); err != nil {
		return q, err
	}
	if p.SortField != "" {
		q.SortField = p.SortField
		q.SortOrder = customer.SortAsc
	}
	if p.SortOrder != "" {
		q.SortOrder = customer.SortOrder(p.SortOrder)
	}
	if p.Page > 0 {
		if q, err = q.WithPage(p.Page); err != nil {
			return q, err
		}
	}
	return q, nil
}
