package avatar

import "testing"

func TestStartEntersNeutralShape(t *testing.T) {
	cap := NewMockCapability()
	c := NewController(cap)

	c.Start()
	if got := cap.StartCount(); got != 1 {
		t.Fatalf("starts = %d, want 1", got)
	}
	if got := cap.LastMorph(); got != "neutral" {
		t.Errorf("shape = %q, want neutral", got)
	}

	// Idempotent.
	c.Start()
	if got := cap.StartCount(); got != 1 {
		t.Errorf("starts after second Start = %d, want 1", got)
	}
}

func TestEventShapeMapping(t *testing.T) {
	tests := []struct {
		event  Event
		shape  string
		active bool
	}{
		{EventThinking, "pondering", false},
		{EventSpeaking, "talking", true},
		{EventListening, "attentive", true},
		{EventAffirmative, "nodding", false},
		{EventGreeting, "waving", false},
		{EventIdle, "neutral", false},
	}

	for _, tt := range tests {
		t.Run(tt.event.String(), func(t *testing.T) {
			cap := NewMockCapability()
			c := NewController(cap)

			c.Handle(tt.event)
			if got := cap.LastMorph(); got != tt.shape {
				t.Errorf("shape = %q, want %q", got, tt.shape)
			}
			if got := cap.LastActive(); got != tt.active {
				t.Errorf("active = %v, want %v", got, tt.active)
			}
		})
	}
}

func TestUnknownEventFallsBackToNeutral(t *testing.T) {
	cap := NewMockCapability()
	c := NewController(cap)

	c.Handle(Event(99))
	if got := cap.LastMorph(); got != "neutral" {
		t.Errorf("shape = %q, want neutral fallback", got)
	}
}

func TestLocaleColorLookup(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"fr", "#3456a8"},
		{"fr-FR", "#3456a8"},
		{"EN-us", "#3c6e9f"},
		{"xx-YY", DefaultColor},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			cap := NewMockCapability()
			c := NewController(cap)

			c.SetLocale(tt.code)
			if got := cap.LastColor(); got != tt.want {
				t.Errorf("color = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPersonaAccentColor(t *testing.T) {
	cap := NewMockCapability()
	c := NewController(cap)

	c.SetAccentColor("#ff00aa")
	if got := cap.LastColor(); got != "#ff00aa" {
		t.Errorf("color = %q", got)
	}
}

func TestDestroyStopsThenReleases(t *testing.T) {
	cap := NewMockCapability()
	c := NewController(cap)

	c.Start()
	c.Destroy()
	if got := cap.StopCount(); got != 1 {
		t.Errorf("stops = %d, want 1", got)
	}
	if !cap.Destroyed() {
		t.Error("renderer not destroyed")
	}
}

func TestCustomTables(t *testing.T) {
	cap := NewMockCapability()
	c := NewController(cap,
		WithShapes(map[Event]string{EventIdle: "rest", EventThinking: "hmm"}),
		WithLocaleColors(map[string]string{"nl": "#123456"}),
	)

	c.Handle(EventThinking)
	if got := cap.LastMorph(); got != "hmm" {
		t.Errorf("shape = %q, want custom table hit", got)
	}
	c.SetLocale("nl")
	if got := cap.LastColor(); got != "#123456" {
		t.Errorf("color = %q, want custom table hit", got)
	}
}
