package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// UnsupportedProviderError is returned when a caller names a provider that is
// neither a canonical identifier nor a known alias.
type UnsupportedProviderError struct {
	Name string
}

// Error implements the error interface.
func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported LLM provider: %s", e.Name)
}

// ErrorType represents the category of a provider call failure.
type ErrorType string

const (
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeProvider       ErrorType = "provider"
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeDecode         ErrorType = "decode"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// ProviderCallError is a transport or decoding failure talking to an LLM backend.
type ProviderCallError struct {
	Provider    Provider
	Type        ErrorType
	Message     string
	StatusCode  int
	Retryable   bool
	ProviderErr error // Original provider-specific error
}

// Error implements the error interface.
func (e *ProviderCallError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.ProviderErr != nil {
		return msg + ": " + e.ProviderErr.Error()
	}
	return msg
}

// Unwrap returns the underlying provider error.
func (e *ProviderCallError) Unwrap() error {
	return e.ProviderErr
}

// IsUnsupportedProvider checks if an error is an unsupported provider error.
func IsUnsupportedProvider(err error) bool {
	var upErr *UnsupportedProviderError
	return errors.As(err, &upErr)
}

// IsProviderCallError checks if an error is a provider call error.
func IsProviderCallError(err error) bool {
	var pcErr *ProviderCallError
	return errors.As(err, &pcErr)
}

// IsRateLimitError checks if an error is a rate limit error.
func IsRateLimitError(err error) bool {
	var pcErr *ProviderCallError
	if errors.As(err, &pcErr) {
		return pcErr.Type == ErrorTypeRateLimit
	}
	return false
}

// IsRetryableError checks if an error is retryable. Nothing in this module
// retries; the flag is surfaced to callers.
func IsRetryableError(err error) bool {
	var pcErr *ProviderCallError
	if errors.As(err, &pcErr) {
		return pcErr.Retryable
	}
	return false
}

// NewProviderError wraps a failure that carries no HTTP status, classifying
// timeouts and network errors.
func NewProviderError(p Provider, message string, providerErr error) *ProviderCallError {
	errType := ErrorTypeProvider
	var netErr net.Error
	switch {
	case errors.Is(providerErr, context.DeadlineExceeded):
		errType = ErrorTypeTimeout
	case errors.As(providerErr, &netErr) && netErr.Timeout():
		errType = ErrorTypeTimeout
	case errors.As(providerErr, &netErr):
		errType = ErrorTypeNetwork
	}
	return &ProviderCallError{
		Provider:    p,
		Type:        errType,
		Message:     message,
		Retryable:   errType == ErrorTypeTimeout || errType == ErrorTypeNetwork,
		ProviderErr: providerErr,
	}
}

// NewStatusError wraps a failure the backend answered with an HTTP status.
func NewStatusError(p Provider, statusCode int, message string, providerErr error) *ProviderCallError {
	e := &ProviderCallError{
		Provider:    p,
		Message:     message,
		StatusCode:  statusCode,
		ProviderErr: providerErr,
	}
	switch {
	case statusCode == http.StatusTooManyRequests:
		e.Type = ErrorTypeRateLimit
		e.Retryable = true
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		e.Type = ErrorTypeAuth
	case statusCode >= 400 && statusCode < 500:
		e.Type = ErrorTypeInvalidRequest
	case statusCode >= 500:
		e.Type = ErrorTypeProvider
		e.Retryable = true
	default:
		e.Type = ErrorTypeUnknown
	}
	return e
}

// NewDecodeError wraps a response the adapter could not interpret.
func NewDecodeError(p Provider, providerErr error) *ProviderCallError {
	return &ProviderCallError{
		Provider:    p,
		Type:        ErrorTypeDecode,
		Message:     "failed to decode response",
		ProviderErr: providerErr,
	}
}
