package prospector

import "github.com/kailas-cloud/prospector/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest  = domain.ErrInvalidRequest
	ErrNotFound        = domain.ErrNotFound
	ErrRateLimited     = domain.ErrRateLimited
	ErrPaymentRequired = domain.ErrPaymentRequired
	ErrUpstreamAuth    = domain.ErrUpstreamAuth
	ErrUpstreamError   = domain.ErrUpstreamError
)

// UpstreamError carries the status and message of a failed upstream call.
// Use errors.As() to inspect it.
type UpstreamError = domain.UpstreamError
