package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/solace-ai/go-concierge/internal/httpc"
)

// generateRequest is the generate-content wire payload.
type generateRequest struct {
	Contents          []content        `json:"contents"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings,omitempty"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// generateResponse is the generate-content wire response.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// defaultSafetySettings relax nothing; the widget runs on public sites.
var defaultSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// generate issues one request for one model against one API version.
// Exactly one attempt; fallback happens across candidates, not in time.
func (f *FallbackClient) generate(ctx context.Context, version, model, prompt string, history []Turn) (string, error) {
	payload := generateRequest{
		Contents:         buildContents(prompt, history),
		GenerationConfig: f.config.Generation,
		SafetySettings:   defaultSafetySettings,
	}
	if f.config.SystemPrompt != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: f.config.SystemPrompt}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		f.config.BaseURL, version, model, f.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("ai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai [%s]: request: %w", model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ai [%s]: read response: %w", model, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    parseErrorMessage(raw),
			Model:      model,
		}
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("ai [%s]: parse response: %w", model, err)
	}
	if parsed.Error.Message != "" {
		return "", &APIError{
			StatusCode: parsed.Error.Code,
			Message:    parsed.Error.Message,
			Model:      model,
		}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("ai [%s]: %w", model, ErrEmptyReply)
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("ai [%s]: %w", model, ErrEmptyReply)
	}
	return text, nil
}

// buildContents converts prompt + history into wire contents. The wire
// knows only "user" and "model" roles.
func buildContents(prompt string, history []Turn) []content {
	contents := make([]content, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: turn.Content}}})
	}
	return append(contents, content{Role: "user", Parts: []part{{Text: prompt}}})
}

// parseErrorMessage extracts the error message from an error body.
func parseErrorMessage(raw []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &errResp) == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	msg := string(raw)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// newHTTPClient builds the transport honoring the configured timeout.
func newHTTPClient(cfg *Config) *http.Client {
	return httpc.NewClient(cfg.Timeout)
}
