// Package errors provides the standardized error taxonomy shared by the HTTP
// endpoint and the job worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodePlanDataNotFound   ErrorCode = "PLAN_DATA_NOT_FOUND"
	ErrCodePlanDataCorrupt    ErrorCode = "PLAN_DATA_CORRUPT"
	ErrCodePlanDataUnreadable ErrorCode = "PLAN_DATA_UNREADABLE"

	ErrCodePremiumNotFound ErrorCode = "PREMIUM_NOT_FOUND"

	ErrCodeInvalidParameters  ErrorCode = "INVALID_PARAMETERS"
	ErrCodeInvalidRequestBody ErrorCode = "INVALID_REQUEST_BODY"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is matches another *StandardError by code so callers can use errors.Is
// against the sentinel values below.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrPlanDataNotFound   = &StandardError{Code: ErrCodePlanDataNotFound}
	ErrPlanDataCorrupt    = &StandardError{Code: ErrCodePlanDataCorrupt}
	ErrPlanDataUnreadable = &StandardError{Code: ErrCodePlanDataUnreadable}
	ErrPremiumNotFound    = &StandardError{Code: ErrCodePremiumNotFound}
	ErrInvalidParameters  = &StandardError{Code: ErrCodeInvalidParameters}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewPlanDataNotFoundError reports a plan file that does not exist.
func NewPlanDataNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodePlanDataNotFound,
		Message:   "Plan data not found",
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlanDataCorruptError reports a plan file that exists but does not parse
// into a price table.
func NewPlanDataCorruptError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePlanDataCorrupt,
		Message:   "Invalid JSON data",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlanDataUnreadableError reports an I/O failure other than absence.
func NewPlanDataUnreadableError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePlanDataUnreadable,
		Message:   "Plan data unreadable",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPremiumNotFoundError reports an age with no premium under the plan option.
func NewPremiumNotFoundError(planOption string, age int) *StandardError {
	return &StandardError{
		Code:      ErrCodePremiumNotFound,
		Message:   fmt.Sprintf("Premium data not found for age %d", age),
		Details:   fmt.Sprintf("planOption: %s, age: %d", planOption, age),
		Retryable: false,
		Metadata:  map[string]interface{}{"age": age, "planOption": planOption},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidParametersError reports a request parameter that names nothing
// usable, such as an unknown plan option.
func NewInvalidParametersError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidParameters,
		Message:   fmt.Sprintf("Invalid parameters: %s", details),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestBodyError reports a body that failed decoding or schema checks.
func NewInvalidRequestBodyError(problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequestBody,
		Message:   "Invalid request body",
		Details:   strings.Join(problems, "; "),
		Retryable: false,
		Metadata:  map[string]interface{}{"problems": problems},
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion
// ==========================

// AsStandardError unwraps err to a *StandardError, wrapping anything else as
// INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HTTPStatus maps an error code to the status returned by the HTTP endpoint.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodePlanDataNotFound:
		return http.StatusNotFound
	case ErrCodePremiumNotFound, ErrCodeInvalidParameters:
		return http.StatusBadRequest
	case ErrCodeInvalidRequestBody:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns the recommended engine-side retry count.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePlanDataUnreadable:
		return 3
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	if stdErr == nil {
		return nil
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: stdErr.Metadata,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch {
	case strings.HasPrefix(string(code), "PLAN_DATA_"):
		return "data"
	case code == ErrCodePremiumNotFound:
		return "projection"
	case strings.HasPrefix(string(code), "INVALID_"):
		return "request"
	default:
		return "internal"
	}
}
