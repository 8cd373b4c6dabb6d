// Package ai provides the conversational reply client with model fallback.
//
// The package wraps a generate-content style HTTP endpoint behind the Client
// interface and layers an ordered candidate list on top: the configured model
// is tried first, then each fallback model in order, until one returns a
// non-empty reply. A candidate that succeeds is adopted as the preferred
// model for subsequent calls.
//
// Example usage:
//
//	client, _ := ai.NewFallbackClient(
//	    ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    ai.WithModel("gemini-2.5-flash"),
//	    ai.WithFallbackModels("gemini-2.0-flash", "gemini-1.5-flash"),
//	)
//
//	reply, err := client.Send(ctx, "Hello!", history)
package ai

import "context"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one prior exchange passed as conversation context.
type Turn struct {
	Role    Role
	Content string
}

// Client produces a reply for a prompt given prior conversation turns.
// Implementations must be safe for sequential reuse; callers serialize
// access (the orchestrator allows one in-flight call at a time).
type Client interface {
	// Send returns the assistant reply text for the prompt.
	// It fails only when every configured option has been exhausted.
	Send(ctx context.Context, prompt string, history []Turn) (string, error)
}

// GenerationConfig tunes reply generation on the wire.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP,omitempty"`
}

// DefaultGenerationConfig returns conversational defaults.
// Short, warm replies suit a chat bubble better than essays.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.8,
		MaxOutputTokens: 512,
	}
}
