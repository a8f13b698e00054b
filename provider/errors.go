package provider

import (
	"context"
	"errors"
	"net/http"
)

// Error taxonomy for payment flows. Gateway adapters translate
// provider-specific failures into these before returning, so the HTTP
// layer never leaks raw provider error payloads.
var (
	// ErrVerificationFailed means a checksum or signature did not match.
	// Nothing is persisted and the caller learns nothing beyond the fact.
	ErrVerificationFailed = errors.New("payment verification failed")

	// ErrProviderRejected means the provider reported a declined or
	// non-successful terminal state.
	ErrProviderRejected = errors.New("payment rejected by provider")

	// ErrNetworkFailure means an outbound call to the provider timed out
	// or errored.
	ErrNetworkFailure = errors.New("provider request failed")

	// ErrPersistenceFailure means the payment store was unavailable or a
	// constraint was violated.
	ErrPersistenceFailure = errors.New("failed to save payment details")

	// ErrNotFound means no payment matches the queried order id.
	ErrNotFound = errors.New("payment details not found")
)

// Kind returns a stable string label for an error's taxonomy class
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrVerificationFailed):
		return "verification_failed"
	case errors.Is(err, ErrProviderRejected):
		return "provider_rejected"
	case errors.Is(err, ErrNetworkFailure):
		return "network_failure"
	case errors.Is(err, ErrPersistenceFailure):
		return "persistence_failure"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}

// HTTPStatus maps a taxonomy error to the status code the HTTP layer
// should respond with
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrVerificationFailed), errors.Is(err, ErrProviderRejected):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrNetworkFailure):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
