package ndl

import (
	"errors"
	"fmt"
	"math"
)

const upstreamName = "NDL Search"

// Failure types carried in ClientError details.
const (
	FailureTimeout         = "timeout"
	FailureCommunication   = "communication"
	FailureInvalidResponse = "invalidResponse"
)

// Error codes surfaced to the HTTP boundary.
const (
	CodeTimeout      = "NDL_API_TIMEOUT"
	CodeBadGateway   = "NDL_API_BAD_GATEWAY"
	CodeItemNotFound = "CATALOG_ITEM_NOT_FOUND"
)

// Validation failures raised before any upstream call is made. These map to
// 400 at the boundary and are never logged as external failures.
var (
	ErrBlankQuery   = errors.New("search query must not be blank")
	ErrInvalidLimit = errors.New("limit must be >= 1")
	ErrInvalidPage  = errors.New("page must be >= 1")
)

// ClientError is the structured outcome of a failed catalog operation. It is
// built at the point of classification, after any retries, and propagates
// unchanged to the HTTP boundary.
type ClientError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.StatusCode)
}

// ExternalFailure reports whether the error represents an upstream fault
// rather than a legitimate empty result.
func (e *ClientError) ExternalFailure() bool {
	v, ok := e.Details["externalFailure"].(bool)
	return ok && v
}

func newTimeoutError(timeoutSeconds float64) *ClientError {
	return &ClientError{
		StatusCode: 504,
		Code:       CodeTimeout,
		Message:    "NDL API request timed out",
		Details: map[string]any{
			"upstream":        upstreamName,
			"externalFailure": true,
			"failureType":     FailureTimeout,
			"retryable":       true,
			"timeoutSeconds":  formatTimeoutSeconds(timeoutSeconds),
		},
	}
}

func newCommunicationError(retryable bool) *ClientError {
	return &ClientError{
		StatusCode: 502,
		Code:       CodeBadGateway,
		Message:    "Failed to connect NDL API",
		Details: map[string]any{
			"upstream":        upstreamName,
			"externalFailure": true,
			"failureType":     FailureCommunication,
			"retryable":       retryable,
		},
	}
}

func newStatusError(statusCode int, retryable bool) *ClientError {
	return &ClientError{
		StatusCode: 502,
		Code:       CodeBadGateway,
		Message:    "NDL API returned non-200 status",
		Details: map[string]any{
			"upstream":        upstreamName,
			"externalFailure": true,
			"failureType":     FailureInvalidResponse,
			"retryable":       retryable,
			"statusCode":      statusCode,
		},
	}
}

func newInvalidXMLError() *ClientError {
	return &ClientError{
		StatusCode: 502,
		Code:       CodeBadGateway,
		Message:    "NDL API returned invalid XML",
		Details: map[string]any{
			"upstream":        upstreamName,
			"externalFailure": true,
			"failureType":     FailureInvalidResponse,
			"retryable":       false,
		},
	}
}

func newInvalidTitleError() *ClientError {
	return &ClientError{
		StatusCode: 502,
		Code:       CodeBadGateway,
		Message:    "NDL API returned invalid title",
		Details: map[string]any{
			"upstream":        upstreamName,
			"externalFailure": true,
			"failureType":     FailureInvalidResponse,
			"retryable":       false,
		},
	}
}

// newItemNotFoundError reports a successful upstream response with no
// matching record. Not an external failure.
func newItemNotFoundError(isbn string) *ClientError {
	return &ClientError{
		StatusCode: 404,
		Code:       CodeItemNotFound,
		Message:    "Catalog item not found",
		Details: map[string]any{
			"isbn":            isbn,
			"upstream":        upstreamName,
			"externalFailure": false,
		},
	}
}

// formatTimeoutSeconds keeps whole-second timeouts as integers in error
// details, matching the upstream wire format.
func formatTimeoutSeconds(timeoutSeconds float64) any {
	if timeoutSeconds == math.Trunc(timeoutSeconds) {
		return int(timeoutSeconds)
	}
	return timeoutSeconds
}
