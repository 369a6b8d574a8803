package provider

import (
	"errors"
	"fmt"
)

// ErrorCode defines provider error codes.
type ErrorCode string

const (
	// Rate limiting and quota
	ErrCodeRateLimited   ErrorCode = "RATE_LIMITED"   // Too many requests
	ErrCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED" // Usage quota exceeded

	// Authentication
	ErrCodeAuthFailed ErrorCode = "AUTH_FAILED" // Invalid or expired credentials

	// Service availability
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE" // Service temporarily unavailable
	ErrCodeModelNotFound      ErrorCode = "MODEL_NOT_FOUND"     // Requested model not found

	// Network and request
	ErrCodeNetworkError   ErrorCode = "NETWORK_ERROR"   // Network connectivity issues
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST" // Malformed request

	// Unknown
	ErrCodeUnknown ErrorCode = "UNKNOWN" // Unclassified error
)

// ProviderError is a structured error for provider operations.
type ProviderError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Provider   string    `json:"provider"`
	Retryable  bool      `json:"retryable"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds until retry is allowed
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Code, e.Message)
}

// IsRateLimit reports whether the error is a rate/quota failure. These are
// the only failures the generation invoker retries; everything else
// surfaces immediately.
func (e *ProviderError) IsRateLimit() bool {
	return e.Code == ErrCodeRateLimited || e.Code == ErrCodeQuotaExceeded
}

// NewProviderError creates a new ProviderError.
func NewProviderError(code ErrorCode, message, provider string) *ProviderError {
	return &ProviderError{
		Code:     code,
		Message:  message,
		Provider: provider,
	}
}

// NewRateLimitError creates a retryable rate-limit error with an optional
// server-advised retry delay in seconds (0 means no advice).
func NewRateLimitError(code ErrorCode, message, provider string, retryAfter int) *ProviderError {
	return &ProviderError{
		Code:       code,
		Message:    message,
		Provider:   provider,
		Retryable:  true,
		RetryAfter: retryAfter,
	}
}

// IsRateLimited checks if an error chain contains a rate/quota failure.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.IsRateLimit()
}
