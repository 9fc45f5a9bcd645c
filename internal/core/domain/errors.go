package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates the configuration cannot be used.
	// Configuration errors are fatal and never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingCredential indicates a hosted provider has no API key.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrInvalidChunkSize indicates a non-positive token limit was requested.
	ErrInvalidChunkSize = errors.New("chunk size must be a positive number of tokens")

	// ErrEmptyResponse indicates a successful HTTP status carried no usable choice.
	// It is retried like any other transient failure.
	ErrEmptyResponse = errors.New("empty completion response")

	// ErrTerminalAPI indicates the completion API failed after all attempts.
	ErrTerminalAPI = errors.New("completion API failed after retries")

	// ErrRunInProgress indicates another run holds the document lock.
	ErrRunInProgress = errors.New("another run is in progress")

	// ErrPublishUnavailable indicates publishing was requested but is not configured.
	ErrPublishUnavailable = errors.New("publisher not configured")
)

// APIError represents a non-success HTTP response from a completion API.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// TerminalError is returned once every attempt of a completion call has failed.
// It wraps the last underlying failure.
type TerminalError struct {
	Attempts int
	Cause    error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("completion failed after %d attempts: %v", e.Attempts, e.Cause)
}

// Unwrap returns the last underlying failure.
func (e *TerminalError) Unwrap() error {
	return e.Cause
}

// Is reports ErrTerminalAPI so callers can match without a type assertion.
func (e *TerminalError) Is(target error) bool {
	return target == ErrTerminalAPI
}

// ConfigError builds an ErrInvalidConfig-wrapped error for a field.
func ConfigError(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}
