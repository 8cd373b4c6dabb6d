package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoAPIKey is returned when the API key is missing.
	ErrNoAPIKey = errors.New("ai: API key required")

	// ErrNoModel is returned when no model is configured.
	ErrNoModel = errors.New("ai: model required")

	// ErrEmptyReply is returned when a model answers with no usable text.
	ErrEmptyReply = errors.New("ai: empty reply")
)

// APIError represents an error response from the reply endpoint.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Model identifies which candidate produced the error.
	Model string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("ai [%s]: API error %d: %s", e.Model, e.StatusCode, e.Message)
}

// IsAuth returns true for authentication/permission failures (401, 403).
// Auth failures are not model-specific, so they abort the fallback loop.
func (e *APIError) IsAuth() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsNotFound returns true when the model or endpoint was not found.
// The message check covers backends that report 400 with a "not found"
// body for unknown model names.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404 || strings.Contains(strings.ToLower(e.Message), "not found")
}

// IsServerError returns true for server-side errors (5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// DiagnosticError aggregates per-candidate failures after the fallback
// list is exhausted. It carries a configuration checklist instead of a
// bare HTTP code because exhaustion is almost always a setup problem.
type DiagnosticError struct {
	// Attempts maps each tried model to the error it produced, in order.
	Attempts []Attempt
}

// Attempt records one failed candidate.
type Attempt struct {
	Model string
	Err   error
}

// Error implements the error interface.
func (e *DiagnosticError) Error() string {
	if len(e.Attempts) == 0 {
		return "ai: no candidates attempted"
	}
	models := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		models[i] = a.Model
	}
	return fmt.Sprintf("ai: all %d models failed (%s), last error: %v",
		len(e.Attempts), strings.Join(models, ", "), e.Attempts[len(e.Attempts)-1].Err)
}

// Unwrap returns the last attempt's error.
func (e *DiagnosticError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

// Checklist returns user-facing diagnostic guidance.
func (e *DiagnosticError) Checklist() []string {
	return []string{
		"verify the API key is valid and not expired",
		"confirm the generative language API is enabled for the project",
		"check that billing is active on the account",
		"check that the configured models are available in this region",
	}
}
