package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRetriesExhausted is matched by every *RetriesExhaustedError.
var ErrRetriesExhausted = errors.New("retry attempts exhausted")

// ErrorClass represents a classification of transport errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors other than 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// TransportError is a failure below the JSON layer: the request could not be sent, or the
// server answered with a non-2xx status. StatusCode is 0 for network errors.
type TransportError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jolpica %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("jolpica %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the request may succeed if sent again.
func (e *TransportError) Retryable() bool {
	return shouldRetry(e.Class)
}

// RetriesExhaustedError is returned when every attempt failed with a retryable transport error.
type RetriesExhaustedError struct {
	Attempts int
	Last     *TransportError
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%v after %d attempts: %v", ErrRetriesExhausted, e.Attempts, e.Last)
}

// Unwrap returns the last transport error, so errors.As can reach it.
func (e *RetriesExhaustedError) Unwrap() error {
	return e.Last
}

// Is reports whether target is ErrRetriesExhausted.
func (e *RetriesExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

// classifyStatus maps a non-2xx HTTP status to an error class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient:
		// 4xx are answers, not outages
		return false
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

// newStatusError builds the TransportError for a non-2xx response.
func newStatusError(resp *http.Response) *TransportError {
	return &TransportError{
		StatusCode: resp.StatusCode,
		Class:      classifyStatus(resp.StatusCode),
		Message:    resp.Status,
	}
}

// newNetworkError builds the TransportError for a request that got no response.
func newNetworkError(err error) *TransportError {
	return &TransportError{
		Class:   ErrorClassNetwork,
		Message: "request failed",
		Err:     err,
	}
}
