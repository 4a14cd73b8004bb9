package dto

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code           string
		expectedStatus int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidReason, http.StatusBadRequest},
		{ErrCodeInvalidWindow, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeUpstream, http.StatusBadGateway},
		{ErrCodePartialFailure, http.StatusMultiStatus},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"ERR_NOT_A_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"VALIDATION_ERROR", ErrCodeValidation},
		{"INVALID_REASON", ErrCodeInvalidReason},
		{"INVALID_WINDOW", ErrCodeInvalidWindow},
		{"CONFLICT", ErrCodeConflict},
		{"UPSTREAM_ERROR", ErrCodeUpstream},
		{"PARTIAL_FAILURE", ErrCodePartialFailure},
		{"BAD_REQUEST", ErrCodeBadRequest},
		{"INTERNAL_ERROR", ErrCodeInternal},
		// Already normalized codes pass through
		{ErrCodeNotFound, ErrCodeNotFound},
		{"SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestEveryMappedCodeHasStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		assert.True(t, strings.HasPrefix(apiCode, "ERR_"), domainCode)
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "no status for %s", apiCode)
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 21, 2, 10)

	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 5, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestNewErrorResponses(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeConflict, "busy", "req-1")
	assert.False(t, resp.Success)
	assert.Equal(t, "req-1", resp.Error.RequestID)

	resp = NewValidationErrorResponse("bad", "req-2", []ValidationDetail{{Field: "reason", Tag: "required"}})
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
}
