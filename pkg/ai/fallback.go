package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
)

// FallbackClient implements Client by trying an ordered list of model
// candidates until one returns a non-empty reply. Candidates are tried
// strictly one at a time; earlier failures stay silent unless the whole
// list is exhausted.
type FallbackClient struct {
	config *Config
	client *http.Client
	logger *slog.Logger

	// preferred is the last model that succeeded. It is tried first on
	// subsequent calls (sticky success).
	mu        sync.Mutex
	preferred string
}

// NewFallbackClient creates a reply client with model fallback.
func NewFallbackClient(opts ...Option) (*FallbackClient, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.APIVersions) == 0 {
		cfg.APIVersions = []string{"v1beta"}
	}

	return &FallbackClient{
		config:    cfg,
		client:    newHTTPClient(cfg),
		logger:    cfg.Logger.With("component", "ai.fallback"),
		preferred: cfg.Model,
	}, nil
}

// Send tries each candidate in order until one succeeds.
//
// Failure classification per candidate:
//   - 401/403: fatal, the loop aborts (auth is not model-specific)
//   - 404 / "not found": the same model is retried once on the alternate
//     API version before advancing
//   - anything else: logged, next candidate
func (f *FallbackClient) Send(ctx context.Context, prompt string, history []Turn) (string, error) {
	candidates := f.candidates()
	var attempts []Attempt

	for _, model := range candidates {
		text, err := f.trySend(ctx, model, prompt, history)
		if err == nil {
			f.adopt(model)
			return text, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsAuth() {
			f.logger.Error("auth failure, aborting fallback",
				"model", model,
				"status", apiErr.StatusCode,
			)
			return "", apiErr
		}

		attempts = append(attempts, Attempt{Model: model, Err: err})
		f.logger.Warn("model failed, trying next",
			"model", model,
			"error", err,
		)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", &DiagnosticError{Attempts: attempts}
}

// trySend issues the request on the primary API version, retrying once
// on the alternate version when the model is reported missing there.
func (f *FallbackClient) trySend(ctx context.Context, model, prompt string, history []Turn) (string, error) {
	text, err := f.generate(ctx, f.config.APIVersions[0], model, prompt, history)
	if err == nil {
		return text, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsNotFound() && len(f.config.APIVersions) > 1 {
		f.logger.Debug("model not found, retrying on alternate API version",
			"model", model,
			"version", f.config.APIVersions[1],
		)
		if text, altErr := f.generate(ctx, f.config.APIVersions[1], model, prompt, history); altErr == nil {
			return text, nil
		}
	}

	return "", err
}

// candidates returns the try order: the preferred (last-successful)
// model first, then the remaining configured models in their order.
func (f *FallbackClient) candidates() []string {
	f.mu.Lock()
	preferred := f.preferred
	f.mu.Unlock()

	configured := append([]string{f.config.Model}, f.config.FallbackModels...)
	order := []string{preferred}
	for _, m := range configured {
		if m != preferred {
			order = append(order, m)
		}
	}
	return order
}

// adopt records a successful candidate as the new default.
func (f *FallbackClient) adopt(model string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.preferred != model {
		f.logger.Info("adopted fallback model as default", "model", model)
		f.preferred = model
	}
}

// Preferred returns the model currently tried first.
func (f *FallbackClient) Preferred() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preferred
}

// Verify FallbackClient implements Client at compile time.
var _ Client = (*FallbackClient)(nil)
