package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"credval/internal/validation/models"
)

// Error wraps a provider failure with its canonical classification. Clients
// and transformers never let a raw transport or decoding fault past their
// boundary; every failure becomes one of these.
type Error struct {
	Code       models.ErrorCode
	Provider   string
	Capability models.Capability
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s/%s]: %s: %v", e.Provider, e.Capability, e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s/%s]: %s", e.Provider, e.Capability, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a classified provider error.
func NewError(code models.ErrorCode, provider string, capability models.Capability, message string, underlying error) *Error {
	return &Error{
		Code:       code,
		Provider:   provider,
		Capability: capability,
		Message:    message,
		Underlying: underlying,
	}
}

// CodeOf extracts the canonical code from an error chain. Unclassified errors
// report UNKNOWN so the chain treats them as retryable.
func CodeOf(err error) models.ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return models.ErrUnknown
}

// ProviderOf extracts the originating provider identifier, if classified.
func ProviderOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Provider
	}
	return ""
}

// IsRetryable reports whether a fallback chain may advance past this error.
func IsRetryable(err error) bool {
	return CodeOf(err).Retryable()
}

// classifyTransport normalizes an HTTP round-trip failure. Context deadline
// maps to TIMEOUT so it stays distinct from connection-level faults.
func classifyTransport(provider string, capability models.Capability, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(models.ErrTimeout, provider, capability, "no response within budget", err)
	}
	if errors.Is(err, context.Canceled) {
		return NewError(models.ErrTimeout, provider, capability, "call abandoned by caller", err)
	}
	return NewError(models.ErrNetwork, provider, capability, "transport failure", err)
}

// classifyStatus normalizes a non-2xx HTTP status. 404 and 422 mean the
// record is absent or unverifiable at this provider; everything else is the
// provider erroring.
func classifyStatus(provider string, capability models.Capability, status int) *Error {
	switch status {
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return NewError(models.ErrNotFound, provider, capability,
			fmt.Sprintf("record not found (status %d)", status), nil)
	default:
		return NewError(models.ErrServiceUnavailable, provider, capability,
			fmt.Sprintf("provider returned status %d", status), nil)
	}
}

// Sentinel errors for chain-level conditions.
var (
	ErrNoProvidersConfigured = errors.New("no providers configured for capability")
	ErrChainExhausted        = errors.New("all providers in chain failed")
)
