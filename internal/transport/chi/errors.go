package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/prospector/internal/domain"
)

// ErrorCode is the machine-readable error code of an API error response.
type ErrorCode string

// API error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeRateLimited        ErrorCode = "rate_limited"
	ErrorCodePaymentRequired    ErrorCode = "payment_required"
	ErrorCodeUpstreamAuthFailed ErrorCode = "upstream_auth_failed"
	ErrorCodeUpstreamError      ErrorCode = "upstream_error"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// invalidRequestHandler passes local validation detail through.
// An upstream rejection only reports the sentinel text.
func invalidRequestHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidRequest) {
		return false
	}
	msg := err.Error()
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		msg = domain.ErrInvalidRequest.Error()
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, msg)
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The response message is the sentinel text so upstream details never reach clients.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		invalidRequestHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrPaymentRequired, http.StatusPaymentRequired, ErrorCodePaymentRequired),
		sentinelHandler(domain.ErrUpstreamAuth, http.StatusBadGateway, ErrorCodeUpstreamAuthFailed),
		sentinelHandler(domain.ErrUpstreamError, http.StatusBadGateway, ErrorCodeUpstreamError),
	}
}
