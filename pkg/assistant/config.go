package assistant

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/solace-ai/go-concierge/pkg/nudge"
)

// DockPosition anchors the widget in the host page.
type DockPosition string

const (
	DockBottomRight DockPosition = "bottom-right"
	DockBottomLeft  DockPosition = "bottom-left"
)

// Config is the declarative configuration surface supplied at init.
type Config struct {
	// SiteID identifies the embedding site.
	SiteID string

	// Theme and DockPosition select widget chrome.
	Theme        string
	DockPosition DockPosition

	// Language and Persona select the initial built-in entries.
	Language string
	Persona  string

	// AIAPIKey, AIModel and FallbackModels configure the reply
	// pipeline.
	AIAPIKey       string
	AIModel        string
	FallbackModels []string

	// TTSAPIKey enables the cloned-voice provider; empty means native
	// synthesis only. VoiceRefs maps persona IDs to provider voice
	// reference IDs.
	TTSAPIKey string
	VoiceRefs map[string]string

	// IdleTimeout and NudgeRules configure the idle nudge.
	IdleTimeout time.Duration
	NudgeRules  []nudge.Rule

	// Feature flags.
	VoiceEnabled          bool
	AutofillEnabled       bool
	NativeFallbackEnabled bool
}

// DefaultWidgetConfig returns a config with every optional knob at its
// default.
func DefaultWidgetConfig() Config {
	return Config{
		Theme:                 "light",
		DockPosition:          DockBottomRight,
		Language:              "en",
		Persona:               Personas[0].ID,
		IdleTimeout:           nudge.DefaultIdleTimeout,
		VoiceEnabled:          true,
		AutofillEnabled:       true,
		NativeFallbackEnabled: true,
	}
}

// LoadEnvConfig builds a config from CONCIERGE_* environment
// variables layered over the defaults.
func LoadEnvConfig() Config {
	cfg := DefaultWidgetConfig()

	if v := os.Getenv("CONCIERGE_SITE_ID"); v != "" {
		cfg.SiteID = v
	}
	if v := os.Getenv("CONCIERGE_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("CONCIERGE_DOCK"); v != "" {
		cfg.DockPosition = DockPosition(v)
	}
	if v := os.Getenv("CONCIERGE_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("CONCIERGE_PERSONA"); v != "" {
		cfg.Persona = v
	}
	if v := os.Getenv("CONCIERGE_AI_API_KEY"); v != "" {
		cfg.AIAPIKey = v
	}
	if v := os.Getenv("CONCIERGE_AI_MODEL"); v != "" {
		cfg.AIModel = v
	}
	if v := os.Getenv("CONCIERGE_TTS_API_KEY"); v != "" {
		cfg.TTSAPIKey = v
	}
	if v := os.Getenv("CONCIERGE_IDLE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.IdleTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("CONCIERGE_VOICE"); v != "" {
		cfg.VoiceEnabled = v == "1" || v == "true"
	}
	if v := os.Getenv("CONCIERGE_AUTOFILL"); v != "" {
		cfg.AutofillEnabled = v == "1" || v == "true"
	}
	if v := os.Getenv("CONCIERGE_NATIVE_FALLBACK"); v != "" {
		cfg.NativeFallbackEnabled = v == "1" || v == "true"
	}

	return cfg
}

// Validate checks required configuration.
func (c *Config) Validate() error {
	if c.SiteID == "" {
		return errors.New("assistant: site ID required")
	}
	switch c.DockPosition {
	case DockBottomRight, DockBottomLeft:
	default:
		return fmt.Errorf("assistant: unknown dock position %q", c.DockPosition)
	}
	if c.IdleTimeout <= 0 {
		return errors.New("assistant: idle timeout must be positive")
	}
	return nil
}
