package tts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoAPIKey is returned when the API key is missing.
	ErrNoAPIKey = errors.New("tts: API key required")

	// ErrNoText is returned when an empty utterance is requested.
	ErrNoText = errors.New("tts: text required")

	// ErrAutoplayBlocked is returned by Playback when the host's
	// autoplay policy refuses to start audio without a user gesture.
	ErrAutoplayBlocked = errors.New("tts: autoplay blocked")

	// ErrPlaybackStopped is returned by Playback when Stop interrupts
	// an in-flight Play. The Speaker treats it as benign supersession.
	ErrPlaybackStopped = errors.New("tts: playback stopped")

	// ErrProviderFailed is returned when the cloned-voice provider
	// failed after having been available. The native fallback is
	// deliberately skipped in that case.
	ErrProviderFailed = errors.New("tts: provider failed after being available")
)

// APIError represents an error response from the TTS API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Provider identifies which provider returned the error.
	Provider string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("tts [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsUnauthorized returns true for authentication errors (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsServerError returns true for server-side errors (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("tts [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
