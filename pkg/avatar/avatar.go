// Package avatar maps conversational events onto an external avatar
// renderer. The renderer is consumed only through the narrow
// Capability interface, so the orchestration core never touches
// rendering internals and tests run without a GPU.
package avatar

import (
	"log/slog"
	"strings"
	"sync"
)

// Capability is the rendering collaborator's full surface.
type Capability interface {
	// MorphTo commands the avatar into a named shape state.
	MorphTo(shape string)

	// SetColor sets the avatar accent color (CSS hex, e.g. "#4a90d9").
	SetColor(rgb string)

	// SetActive toggles the attention animation.
	SetActive(active bool)

	// Start and Stop control the render loop.
	Start()
	Stop()

	// Destroy releases renderer resources. The capability must not be
	// used afterwards.
	Destroy()
}

// Event is a conversational event the avatar reacts to.
type Event int

const (
	// EventIdle returns the avatar to its neutral baseline.
	EventIdle Event = iota
	// EventListening means speech recognition is live.
	EventListening
	// EventThinking means an AI reply is in flight.
	EventThinking
	// EventSpeaking means the assistant is talking.
	EventSpeaking
	// EventAffirmative accompanies a positive answer.
	EventAffirmative
	// EventGreeting accompanies the session-opening greeting.
	EventGreeting
)

// String returns a human-readable event name.
func (e Event) String() string {
	switch e {
	case EventIdle:
		return "idle"
	case EventListening:
		return "listening"
	case EventThinking:
		return "thinking"
	case EventSpeaking:
		return "speaking"
	case EventAffirmative:
		return "affirmative"
	case EventGreeting:
		return "greeting"
	default:
		return "unknown"
	}
}

// defaultShapes is the event-to-shape lookup. Shape names are the
// renderer's morph-target identifiers.
var defaultShapes = map[Event]string{
	EventIdle:        "neutral",
	EventListening:   "attentive",
	EventThinking:    "pondering",
	EventSpeaking:    "talking",
	EventAffirmative: "nodding",
	EventGreeting:    "waving",
}

// defaultLocaleColors maps language codes to flag-derived accent
// colors. Lookup falls back from full tag to primary subtag.
var defaultLocaleColors = map[string]string{
	"en": "#3c6e9f",
	"es": "#c94f3d",
	"fr": "#3456a8",
	"de": "#d4a017",
	"it": "#2f8a4c",
	"pt": "#2e7d46",
	"ja": "#bc4343",
	"zh": "#c03430",
}

// DefaultColor is the accent used when no locale mapping exists.
const DefaultColor = "#5a6b7c"

// Controller translates conversational events into capability calls.
// All mappings are plain lookups; the controller holds no goroutines.
type Controller struct {
	mu      sync.Mutex
	cap     Capability
	shapes  map[Event]string
	colors  map[string]string
	logger  *slog.Logger
	started bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithShapes overrides the event-to-shape table.
func WithShapes(shapes map[Event]string) ControllerOption {
	return func(c *Controller) {
		c.shapes = shapes
	}
}

// WithLocaleColors overrides the locale-to-color table.
func WithLocaleColors(colors map[string]string) ControllerOption {
	return func(c *Controller) {
		c.colors = colors
	}
}

// WithControllerLogger sets the structured logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger.With("component", "avatar")
	}
}

// NewController wraps a renderer capability.
func NewController(capability Capability, opts ...ControllerOption) *Controller {
	c := &Controller{
		cap:    capability,
		shapes: defaultShapes,
		colors: defaultLocaleColors,
		logger: slog.Default().With("component", "avatar"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins rendering in the neutral shape.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	c.cap.Start()
	c.cap.MorphTo(c.shapes[EventIdle])
}

// Stop halts rendering.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	c.started = false
	c.cap.Stop()
}

// Destroy stops and releases the renderer.
func (c *Controller) Destroy() {
	c.Stop()
	c.cap.Destroy()
}

// Handle reacts to a conversational event. Unknown events fall back to
// the neutral shape.
func (c *Controller) Handle(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	shape, ok := c.shapes[event]
	if !ok {
		shape = c.shapes[EventIdle]
	}
	c.logger.Debug("avatar event", "event", event.String(), "shape", shape)
	c.cap.MorphTo(shape)
	c.cap.SetActive(event == EventListening || event == EventSpeaking)
}

// SetLocale recolors the avatar for a language. Lookup tries the full
// tag then the primary subtag before the default.
func (c *Controller) SetLocale(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lower := strings.ToLower(code)
	color, ok := c.colors[lower]
	if !ok {
		if base, _, found := strings.Cut(lower, "-"); found {
			color, ok = c.colors[base]
		}
	}
	if !ok {
		color = DefaultColor
	}
	c.cap.SetColor(color)
}

// SetAccentColor applies a persona accent color directly.
func (c *Controller) SetAccentColor(rgb string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cap.SetColor(rgb)
}
