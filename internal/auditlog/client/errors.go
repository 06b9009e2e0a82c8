package client

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for management API calls.
//
// Callers decide how to report a failure from the category without inspecting
// raw messages. Nothing in this module retries; Retryable is informational and
// lets a caller explain whether running the report again is likely to help.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorCanceled       ErrorCategory = "canceled"
	ErrorAuthentication ErrorCategory = "authentication"
	ErrorNotFound       ErrorCategory = "not_found"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorServiceOutage  ErrorCategory = "service_outage"
	ErrorBadRequest     ErrorCategory = "bad_request"
	ErrorBadData        ErrorCategory = "bad_data"
	ErrorInternal       ErrorCategory = "internal"
)

// ServiceError describes one failed call. It keeps whatever diagnostics the
// service sent back so the caller can render a useful message.
type ServiceError struct {
	Category   ErrorCategory
	Method     string
	URL        string
	StatusCode int    // 0 when no response was received
	Code       string // remote error code, e.g. AF20022
	Message    string
	Body       []byte
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("management api %s %s [%s]", e.Method, e.URL, e.Category)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status %d", e.StatusCode)
	}
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

// Unwrap supports error unwrapping
func (e *ServiceError) Unwrap() error {
	return e.Underlying
}

func newServiceError(category ErrorCategory, method, url, message string, underlying error) *ServiceError {
	return &ServiceError{
		Category:   category,
		Method:     method,
		URL:        url,
		Message:    message,
		Underlying: underlying,
		Retryable: category == ErrorTimeout ||
			category == ErrorServiceOutage ||
			category == ErrorRateLimited,
	}
}

// IsRetryable checks if an error is worth running again.
func IsRetryable(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error
func GetCategory(err error) ErrorCategory {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Category
	}
	return ErrorInternal
}
