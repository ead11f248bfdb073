package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodePlanDataNotFound, http.StatusNotFound},
		{ErrCodePlanDataCorrupt, http.StatusInternalServerError},
		{ErrCodePlanDataUnreadable, http.StatusInternalServerError},
		{ErrCodePremiumNotFound, http.StatusBadRequest},
		{ErrCodeInvalidParameters, http.StatusBadRequest},
		{ErrCodeInvalidRequestBody, http.StatusUnprocessableEntity},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.code))
		})
	}
}

func TestConstructors_Messages(t *testing.T) {
	assert.Equal(t, "Plan data not found", NewPlanDataNotFoundError("plan2/acme/gold.json").Message)
	assert.Equal(t, "Invalid JSON data", NewPlanDataCorruptError("p", fmt.Errorf("boom")).Message)
	assert.Equal(t, "Premium data not found for age 105", NewPremiumNotFoundError("Gold", 105).Message)
	assert.Equal(t, "Invalid parameters: 'Silver'", NewInvalidParametersError("'Silver'").Message)

	premErr := NewPremiumNotFoundError("Gold", 42)
	assert.Equal(t, 42, premErr.Metadata["age"])
	assert.False(t, premErr.Retryable)
	assert.False(t, premErr.Timestamp.IsZero())
}

func TestStandardError_Is(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NewPlanDataNotFoundError("x"))

	assert.True(t, stderrors.Is(wrapped, ErrPlanDataNotFound))
	assert.False(t, stderrors.Is(wrapped, ErrPlanDataCorrupt))
}

func TestAsStandardError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, AsStandardError(nil))
	})

	t.Run("wrapped standard error is unwrapped", func(t *testing.T) {
		orig := NewPremiumNotFoundError("Gold", 50)
		got := AsStandardError(fmt.Errorf("project: %w", orig))
		require.NotNil(t, got)
		assert.Same(t, orig, got)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := AsStandardError(fmt.Errorf("disk on fire"))
		require.NotNil(t, got)
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.Equal(t, "disk on fire", got.Details)
	})
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewPlanDataUnreadableError("plan2/acme/gold.json", fmt.Errorf("permission denied"))

	bpmnErr := ConvertToBPMNError(stdErr)
	require.NotNil(t, bpmnErr)
	assert.Equal(t, "PLAN_DATA_UNREADABLE", bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "PLAN_DATA_UNREADABLE", vars["errorCode"])
	assert.Equal(t, "Plan data unreadable", vars["errorMessage"])

	assert.Nil(t, ConvertToBPMNError(nil))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "data", GetErrorCategory(ErrCodePlanDataCorrupt))
	assert.Equal(t, "projection", GetErrorCategory(ErrCodePremiumNotFound))
	assert.Equal(t, "request", GetErrorCategory(ErrCodeInvalidRequestBody))
	assert.Equal(t, "internal", GetErrorCategory(ErrCodeInternal))

	assert.True(t, IsRetryableErrorCode(ErrCodePlanDataUnreadable))
	assert.False(t, IsRetryableErrorCode(ErrCodePlanDataNotFound))
}
