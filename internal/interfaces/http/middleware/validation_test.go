package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValidationErrors(t *testing.T) {
	require.NoError(t, SetupValidator())

	router := gin.New()
	router.Use(RequestID())
	router.POST("/sort", func(c *gin.Context) {
		var req dto.SortRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})
	router.GET("/dashboard", func(c *gin.Context) {
		var q dto.DashboardQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(q))
	})

	decode := func(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
		t.Helper()
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	t.Run("unknown sort field is reported by json name", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/sort", strings.NewReader(`{"field":"password"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "field", resp.Error.Details[0].Field)
		assert.Equal(t, "sort_field", resp.Error.Details[0].Tag)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("known sort field passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/sort", strings.NewReader(`{"field":"name"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/sort", strings.NewReader(`{"field":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
	})

	t.Run("window mode and dates", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard?mode=fortnight&start=03-01-2024", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		fields := []string{}
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"mode", "start"}, fields)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard?mode=custom&start=2024-03-01&end=2024-03-07", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
