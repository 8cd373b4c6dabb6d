// Package nudge implements the idle re-engagement timer.
//
// After a configurable stretch of user inactivity the timer fires at
// most one nudge per idle period: a page-aware suggestion chosen from
// a rule table, or occasionally a generic hint. Any user interaction
// resets the countdown; once a nudge has fired the timer disarms
// itself and stays quiet until the caller explicitly starts it again.
package nudge

import (
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// DefaultIdleTimeout is how long the user must be inactive before a
// nudge fires.
const DefaultIdleTimeout = 45 * time.Second

// DefaultGenericProbability is the chance a generic hint fires on a
// page no rule matches.
const DefaultGenericProbability = 0.35

// GenericHint is the fallback nudge text.
const GenericHint = "Still there? I'm happy to help if you have any questions."

// Rule maps a URL substring to a page-specific suggestion.
// Rules are evaluated in order; the first match wins.
type Rule struct {
	// PathContains is matched case-insensitively against the page URL.
	// Empty matches every page.
	PathContains string

	// Suggestion is the nudge text for matching pages.
	Suggestion string
}

// Timer is the idle nudge timer. It is one-shot per idle period: after
// firing it stays disarmed until the next explicit Start. Reset never
// revives a fired timer, so a nudge cannot fire twice without the
// caller re-arming in between.
type Timer struct {
	timeout time.Duration
	rules   []Rule
	prob    float64
	randFn  func() float64
	logger  *slog.Logger
	onNudge func(suggestion string)

	mu    sync.Mutex
	timer *time.Timer
	fired bool
	url   string
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithIdleTimeout overrides the idle duration before a nudge fires.
func WithIdleTimeout(d time.Duration) TimerOption {
	return func(t *Timer) {
		t.timeout = d
	}
}

// WithRules sets the ordered page-suggestion rule table.
func WithRules(rules []Rule) TimerOption {
	return func(t *Timer) {
		t.rules = rules
	}
}

// WithGenericProbability sets the chance of a generic hint when no
// rule matches (0 disables generic nudges, 1 always fires).
func WithGenericProbability(p float64) TimerOption {
	return func(t *Timer) {
		t.prob = p
	}
}

// WithRandFunc overrides the randomness source. Tests use this to make
// the generic-hint roll deterministic.
func WithRandFunc(fn func() float64) TimerOption {
	return func(t *Timer) {
		t.randFn = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) TimerOption {
	return func(t *Timer) {
		t.logger = logger.With("component", "nudge")
	}
}

// NewTimer creates an idle nudge timer. onNudge is invoked at most once
// per idle period with the chosen suggestion text.
func NewTimer(onNudge func(suggestion string), opts ...TimerOption) *Timer {
	t := &Timer{
		timeout: DefaultIdleTimeout,
		prob:    DefaultGenericProbability,
		randFn:  rand.Float64,
		logger:  slog.Default().With("component", "nudge"),
		onNudge: onNudge,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetURL records the current page URL used for rule matching.
func (t *Timer) SetURL(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.url = url
}

// Start arms the countdown for a new idle period. Starting an already
// armed timer restarts it; starting after a fire re-arms it.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fired = false
	t.armLocked()
}

// Reset restarts the countdown after user interaction. Unlike Start it
// is a no-op once the current period's nudge has fired.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armLocked()
}

// Stop disarms the countdown without firing. The timer can be
// re-armed with Start.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Fired reports whether the current idle period's shot has been spent.
// Start clears it.
func (t *Timer) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

func (t *Timer) armLocked() {
	if t.fired {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.timeout, t.fire)
}

func (t *Timer) fire() {
	t.mu.Lock()
	if t.fired {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.timer = nil
	url := t.url
	t.mu.Unlock()

	suggestion, ok := t.pick(url)
	if !ok {
		t.logger.Debug("idle timeout reached, no nudge for this page", "url", url)
		return
	}

	t.logger.Info("delivering idle nudge", "url", url)
	if t.onNudge != nil {
		t.onNudge(suggestion)
	}
}

// pick chooses the nudge text for a page. Rule order decides ties; a
// page with no matching rule gets the generic hint with probability
// prob, otherwise nothing.
func (t *Timer) pick(url string) (string, bool) {
	lower := strings.ToLower(url)
	for _, rule := range t.rules {
		if strings.Contains(lower, strings.ToLower(rule.PathContains)) {
			return rule.Suggestion, true
		}
	}
	if t.randFn() < t.prob {
		return GenericHint, true
	}
	return "", false
}
