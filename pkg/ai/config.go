package ai

import (
	"log/slog"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Config holds reply client configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Provider credentials
	APIKey  string
	BaseURL string

	// Model selection
	Model          string
	FallbackModels []string

	// APIVersions is the ordered list of endpoint versions. The first is
	// used for every request; the rest are tried only when a model 404s,
	// since some models exist on one version path but not the other.
	APIVersions []string

	// Generation parameters sent with every request.
	Generation GenerationConfig

	// SystemPrompt is prepended to the conversation as a system turn.
	SystemPrompt string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the primary model.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithFallbackModels sets the models tried, in order, after the primary.
func WithFallbackModels(models ...string) Option {
	return func(c *Config) {
		c.FallbackModels = models
	}
}

// WithAPIVersions overrides the endpoint version order.
func WithAPIVersions(versions ...string) Option {
	return func(c *Config) {
		c.APIVersions = versions
	}
}

// WithGeneration sets generation parameters.
func WithGeneration(gen GenerationConfig) Option {
	return func(c *Config) {
		c.Generation = gen
	}
}

// WithSystemPrompt sets the system instruction.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     defaultBaseURL,
		Model:       "gemini-2.5-flash",
		APIVersions: []string{"v1beta", "v1"},
		Generation:  DefaultGenerationConfig(),
		Timeout:     30 * time.Second,
		Logger:      slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if c.Model == "" {
		return ErrNoModel
	}
	return nil
}
