package client

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{http.StatusBadRequest, ErrorClassClient},
		{http.StatusNotFound, ErrorClassClient},
		{http.StatusTooManyRequests, ErrorClassRateLimit},
		{http.StatusInternalServerError, ErrorClassServer},
		{http.StatusBadGateway, ErrorClassServer},
		{http.StatusServiceUnavailable, ErrorClassServer},
		{http.StatusMovedPermanently, ErrorClassClient},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.want {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  bool
	}{
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{"unknown", false},
	}

	for _, tt := range tests {
		if got := shouldRetry(tt.class); got != tt.want {
			t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestTransportError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *TransportError
		want string
	}{
		{
			name: "status error",
			err:  newStatusError(&http.Response{StatusCode: 503, Status: "503 Service Unavailable"}),
			want: "jolpica server error (status 503): 503 Service Unavailable",
		},
		{
			name: "network error",
			err:  newNetworkError(io.ErrUnexpectedEOF),
			want: "jolpica network error (status 0): request failed: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	err := newNetworkError(io.ErrUnexpectedEOF)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("network error should unwrap to its cause")
	}
	if !err.Retryable() {
		t.Error("network error should be retryable")
	}

	notFound := newStatusError(&http.Response{StatusCode: 404, Status: "404 Not Found"})
	if notFound.Retryable() {
		t.Error("404 should not be retryable")
	}
}

func TestRetriesExhaustedError(t *testing.T) {
	last := newStatusError(&http.Response{StatusCode: 500, Status: "500 Internal Server Error"})
	var err error = &RetriesExhaustedError{Attempts: 3, Last: last}

	if !errors.Is(err, ErrRetriesExhausted) {
		t.Error("errors.Is(err, ErrRetriesExhausted) = false, want true")
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatal("errors.As should reach the last transport error")
	}
	if te.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", te.StatusCode)
	}

	if msg := err.Error(); !strings.Contains(msg, "after 3 attempts") {
		t.Errorf("Error() = %q, want attempt count", msg)
	}
}
