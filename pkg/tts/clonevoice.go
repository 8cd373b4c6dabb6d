package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/solace-ai/go-concierge/internal/httpc"
)

const (
	cloneVoiceBaseURL = "https://api.fish.audio"
	providerClone     = "clonevoice"
)

// CloneVoice implements Provider against a cloned-voice HTTP API.
// The request carries {text, reference_id?, language?}; the response is
// an audio blob.
type CloneVoice struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewCloneVoice creates a cloned-voice TTS provider.
func NewCloneVoice(opts ...Option) (*CloneVoice, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cloneVoiceBaseURL
	}

	return &CloneVoice{
		config:  cfg,
		client:  httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "tts.clonevoice"),
		baseURL: baseURL,
	}, nil
}

// Synthesize converts text to audio, returning the complete buffer.
// One attempt per call; fallback policy lives in the Speaker.
func (c *CloneVoice) Synthesize(ctx context.Context, req SpeakRequest) (*AudioResult, error) {
	if req.Text == "" {
		return nil, WrapError(providerClone, ErrNoText)
	}

	start := time.Now()

	voiceRef := req.VoiceRef
	if voiceRef == "" {
		voiceRef = c.config.DefaultVoiceRef
	}

	payload := map[string]any{"text": req.Text}
	if voiceRef != "" {
		payload["reference_id"] = voiceRef
	}
	if req.Lang != "" {
		payload["language"] = req.Lang
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerClone, fmt.Errorf("marshal payload: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tts", bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerClone, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, WrapError(providerClone, fmt.Errorf("request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(providerClone, fmt.Errorf("read response: %w", err))
	}
	if len(audio) == 0 {
		return nil, WrapError(providerClone, fmt.Errorf("empty audio payload"))
	}

	latency := time.Since(start).Milliseconds()
	c.logger.Debug("synthesized audio",
		"chars", len(req.Text),
		"bytes", len(audio),
		"latency_ms", latency,
	)

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/mpeg"
	}

	return &AudioResult{
		Audio:     audio,
		MIME:      mime,
		CharCount: len(req.Text),
		LatencyMs: latency,
	}, nil
}

// Health checks API connectivity and key validity with a tiny request.
func (c *CloneVoice) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return WrapError(providerClone, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return WrapError(providerClone, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}
	return nil
}

// SupportsDirectives reports that the cloned-voice API interprets
// parenthesized emotion/pause markers natively.
func (c *CloneVoice) SupportsDirectives() bool {
	return true
}

// Close releases resources held by the provider.
func (c *CloneVoice) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// parseError reads and parses an error response.
func (c *CloneVoice) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	message := string(body)
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			message = errResp.Message
		} else if errResp.Detail != "" {
			message = errResp.Detail
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerClone,
	}
}

// Verify CloneVoice implements Provider at compile time.
var _ Provider = (*CloneVoice)(nil)
