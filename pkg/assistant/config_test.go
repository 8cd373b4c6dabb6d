package assistant

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultWidgetConfig()
	cfg.SiteID = "site-1"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	t.Run("missing site ID", func(t *testing.T) {
		c := DefaultWidgetConfig()
		if err := c.Validate(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("bad dock position", func(t *testing.T) {
		c := DefaultWidgetConfig()
		c.SiteID = "s"
		c.DockPosition = "top-center"
		if err := c.Validate(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("zero idle timeout", func(t *testing.T) {
		c := DefaultWidgetConfig()
		c.SiteID = "s"
		c.IdleTimeout = 0
		if err := c.Validate(); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("CONCIERGE_SITE_ID", "acme")
	t.Setenv("CONCIERGE_LANGUAGE", "fr")
	t.Setenv("CONCIERGE_PERSONA", "luna")
	t.Setenv("CONCIERGE_AI_API_KEY", "key-123")
	t.Setenv("CONCIERGE_IDLE_TIMEOUT", "90")
	t.Setenv("CONCIERGE_VOICE", "false")

	cfg := LoadEnvConfig()
	if cfg.SiteID != "acme" {
		t.Errorf("SiteID = %q", cfg.SiteID)
	}
	if cfg.Language != "fr" {
		t.Errorf("Language = %q", cfg.Language)
	}
	if cfg.Persona != "luna" {
		t.Errorf("Persona = %q", cfg.Persona)
	}
	if cfg.AIAPIKey != "key-123" {
		t.Errorf("AIAPIKey = %q", cfg.AIAPIKey)
	}
	if cfg.IdleTimeout != 90*time.Second {
		t.Errorf("IdleTimeout = %v", cfg.IdleTimeout)
	}
	if cfg.VoiceEnabled {
		t.Error("VoiceEnabled = true, want env override to false")
	}

	// Untouched knobs keep their defaults.
	if cfg.DockPosition != DockBottomRight {
		t.Errorf("DockPosition = %q", cfg.DockPosition)
	}
}
