package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerHandler_List(t *testing.T) {
	t.Run("default query returns the first page with meta", func(t *testing.T) {
		h := newHarness(t)

		w := h.do(http.MethodGet, "/api/v1/customers", "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		items, resp := decodeData[[]customer.Customer](t, w)
		assert.Len(t, items, 10)
		assert.Equal(t, "c01", items[0].ID)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(25), resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)

		q := h.directory.lastQuery()
		assert.Equal(t, customer.DefaultSortField, q.SortField)
		assert.Equal(t, customer.StatusAll, q.Status)
	})

	t.Run("paging and search", func(t *testing.T) {
		h := newHarness(t)

		w := h.do(http.MethodGet, "/api/v1/customers?page=2&pageSize=5&search=customer", "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		items, resp := decodeData[[]customer.Customer](t, w)
		require.Len(t, items, 5)
		assert.Equal(t, "c06", items[0].ID)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 5, resp.Meta.PageSize)

		q := h.directory.lastQuery()
		assert.Equal(t, "customer", q.Search)
		assert.Equal(t, 2, q.Page)
	})

	t.Run("sort field starts ascending unless an order is given", func(t *testing.T) {
		h := newHarness(t)

		w := h.do(http.MethodGet, "/api/v1/customers?sortField=name", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, customer.SortAsc, h.directory.lastQuery().SortOrder)

		w = h.do(http.MethodGet, "/api/v1/customers?sortField=name&sortOrder=desc", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, customer.SortDesc, h.directory.lastQuery().SortOrder)
	})

	t.Run("filters are passed through", func(t *testing.T) {
		h := newHarness(t)

		w := h.do(http.MethodGet, "/api/v1/customers?milkType=m1&subcategory=s1&status=active", "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		q := h.directory.lastQuery()
		assert.Equal(t, "m1", q.MilkType)
		assert.Equal(t, "s1", q.Subcategory)
		assert.Equal(t, customer.StatusActive, q.Status)
	})

	t.Run("subcategory without milk type is rejected", func(t *testing.T) {
		h := newHarness(t)

		w := h.do(http.MethodGet, "/api/v1/customers?subcategory=s1", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		_, resp := decodeData[any](t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Empty(t, h.directory.queries)
	})

	badQueries := []struct {
		name  string
		query string
	}{
		{"unknown sort field", "sortField=password"},
		{"unknown status", "status=paused"},
		{"unknown order", "sortOrder=sideways"},
		{"page size over limit", "pageSize=500"},
	}
	for _, tt := range badQueries {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			w := h.do(http.MethodGet, "/api/v1/customers?"+tt.query, "")

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Empty(t, h.directory.queries)
		})
	}

	t.Run("backend failure maps to 502", func(t *testing.T) {
		h := newHarness(t)
		h.directory.listErr = shared.ErrUpstream.WithCause(errors.New("GET /customers: status 503"))

		w := h.do(http.MethodGet, "/api/v1/customers", "")

		assert.Equal(t, http.StatusBadGateway, w.Code)
		_, resp := decodeData[any](t, w)
		assert.Equal(t, dto.ErrCodeUpstream, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "status 503")
	})
}
