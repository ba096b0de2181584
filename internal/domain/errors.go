package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals a request the engine cannot turn into an upstream call.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound signals that the upstream found no matching record.
	ErrNotFound = errors.New("no matching record")
	// ErrRateLimited signals an upstream rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrPaymentRequired signals exhausted upstream credits.
	ErrPaymentRequired = errors.New("upstream credits exhausted")
	// ErrUpstreamAuth signals that the upstream rejected the configured API key.
	ErrUpstreamAuth = errors.New("upstream authentication failed")
	// ErrUpstreamError signals any other upstream failure (transport or non-success status).
	ErrUpstreamError = errors.New("upstream error")
)

// UpstreamError carries the upstream status and message for a failed call.
// It unwraps to the sentinel matching the status.
type UpstreamError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s returned %d", e.sentinel(), e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: %s returned %d: %s", e.sentinel(), e.Endpoint, e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.sentinel() }

func (e *UpstreamError) sentinel() error {
	switch e.Status {
	case 400, 422:
		return ErrInvalidRequest
	case 401, 403:
		return ErrUpstreamAuth
	case 402:
		return ErrPaymentRequired
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		return ErrUpstreamError
	}
}

// NewUpstreamError creates an UpstreamError.
func NewUpstreamError(endpoint string, status int, message string) error {
	return &UpstreamError{Endpoint: endpoint, Status: status, Message: message}
}
