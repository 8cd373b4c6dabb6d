// Package autofill implements voice- and text-driven form filling.
//
// A fill session extracts a form's fillable fields once, then walks
// them with an integer cursor. Values are coerced by field type
// (yes/no for checkboxes, option matching for dropdowns, dictated-date
// normalization) and committed with the synthetic events host-page
// scripts expect.
package autofill

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/solace-ai/go-concierge/pkg/page"
)

// State is the fill-session state.
type State int

const (
	// StateInactive means no fill session is running.
	StateInactive State = iota
	// StateCollecting means the cursor is on a field awaiting a value.
	StateCollecting
	// StateComplete means every field has been visited.
	StateComplete
)

// String returns a human-readable state.
func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateCollecting:
		return "collecting"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Engine owns the form-fill cursor. Field state is mutated only
// through the cursor operations here.
type Engine struct {
	doc        page.Document
	logger     *slog.Logger
	typeDelay  func() time.Duration
	onComplete func()

	form   page.Form
	fields []*FormField
	cursor int
	state  State
	filled int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTypingDelay overrides the per-character typing delay source.
// Tests use a zero delay.
func WithTypingDelay(fn func() time.Duration) EngineOption {
	return func(e *Engine) {
		e.typeDelay = fn
	}
}

// WithOnComplete sets the callback fired when the cursor passes the
// last field.
func WithOnComplete(fn func()) EngineOption {
	return func(e *Engine) {
		e.onComplete = fn
	}
}

// WithEngineLogger sets the structured logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger.With("component", "autofill")
	}
}

// NewEngine creates a fill engine over a host document.
func NewEngine(doc page.Document, opts ...EngineOption) *Engine {
	e := &Engine{
		doc:    doc,
		logger: slog.Default().With("component", "autofill"),
		// The visible typing animation uses small randomized delays;
		// the committed value never depends on them.
		typeDelay: func() time.Duration {
			return time.Duration(20+rand.Intn(40)) * time.Millisecond
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DetectForms returns the document's forms.
func (e *Engine) DetectForms() []page.Form {
	return e.doc.Forms()
}

// StartFilling begins a session over form, extracting its fields
// fresh, and returns the first field. A form with nothing fillable
// returns nil and leaves the engine inactive.
func (e *Engine) StartFilling(form page.Form) *FormField {
	fields := extractFields(form)
	if len(fields) == 0 {
		e.logger.Debug("form has no fillable fields", "form", form.ID())
		return nil
	}

	e.form = form
	e.fields = fields
	e.cursor = 0
	e.filled = 0
	e.state = StateCollecting
	e.logger.Info("fill session started", "form", form.ID(), "fields", len(fields))

	e.focusCurrent()
	return fields[0]
}

// Stop abandons the session. Field set and cursor are discarded.
func (e *Engine) Stop() {
	if e.state == StateInactive {
		return
	}
	e.unhighlightCurrent()
	e.form = nil
	e.fields = nil
	e.cursor = 0
	e.filled = 0
	e.state = StateInactive
}

// Active reports whether a fill session is running (collecting or
// complete but not yet submitted/stopped).
func (e *Engine) Active() bool {
	return e.state != StateInactive
}

// State returns the session state.
func (e *Engine) State() State {
	return e.state
}

// CurrentField returns the field under the cursor, or nil once the
// cursor has passed the end.
func (e *Engine) CurrentField() *FormField {
	if e.state != StateCollecting || e.cursor >= len(e.fields) {
		return nil
	}
	return e.fields[e.cursor]
}

// NextField advances the cursor and returns the new current field.
// Advancing past the last field completes the session and returns nil.
func (e *Engine) NextField() *FormField {
	if e.state != StateCollecting {
		return nil
	}
	e.unhighlightCurrent()

	e.cursor++
	if e.cursor >= len(e.fields) {
		e.cursor = len(e.fields)
		e.complete()
		return nil
	}
	e.focusCurrent()
	return e.fields[e.cursor]
}

// PreviousField moves the cursor back, clamped at the first field.
func (e *Engine) PreviousField() *FormField {
	if e.state != StateCollecting {
		return nil
	}
	e.unhighlightCurrent()

	if e.cursor > 0 {
		e.cursor--
	}
	e.focusCurrent()
	return e.fields[e.cursor]
}

// FillCurrentField coerces value into the field under the cursor and
// advances. An inactive session or exhausted cursor is an error.
func (e *Engine) FillCurrentField(value string) error {
	field := e.CurrentField()
	if field == nil {
		return fmt.Errorf("autofill: no current field")
	}

	e.fill(field, value)
	e.filled++
	e.NextField()
	return nil
}

// FillFieldByVoice offers a recognized utterance to the session. It
// reports false when no session is collecting, signalling the caller
// to route the utterance to the chat pipeline instead.
func (e *Engine) FillFieldByVoice(utterance string) bool {
	if e.CurrentField() == nil {
		return false
	}
	return e.FillCurrentField(strings.TrimSpace(utterance)) == nil
}

// SubmitForm dispatches a cancelable synthetic submit. It reports
// false when a host-page handler canceled the submission. Either way
// the session ends.
func (e *Engine) SubmitForm() bool {
	if e.form == nil {
		return false
	}
	submitted := e.form.Submit()
	if submitted {
		e.logger.Info("form submitted", "form", e.form.ID(), "filled", e.filled)
	} else {
		e.logger.Info("form submission canceled by page handler", "form", e.form.ID())
	}
	e.Stop()
	return submitted
}

// Progress returns visited and total field counts.
func (e *Engine) Progress() (visited, total int) {
	return e.cursor, len(e.fields)
}

// complete marks the session done and notifies the caller, who
// typically offers to submit.
func (e *Engine) complete() {
	e.state = StateComplete
	e.logger.Info("all fields visited", "form", e.form.ID(), "filled", e.filled)
	if e.onComplete != nil {
		e.onComplete()
	}
}

// fill coerces and commits one value, then dispatches the events the
// host page's validation listens for.
func (e *Engine) fill(field *FormField, value string) {
	ref := field.Ref

	switch field.Type {
	case TypeCheckbox:
		if on, ok := coerceYesNo(value); ok {
			ref.SetChecked(on)
		}
	case TypeChoice:
		if on, ok := coerceYesNo(value); ok {
			ref.SetChecked(on)
		} else if option, ok := matchOption(ref.Options(), value); ok {
			ref.SetValue(option)
			ref.SetChecked(true)
		}
	case TypeDropdown:
		if option, ok := matchOption(ref.Options(), value); ok {
			ref.SetValue(option)
		} else {
			ref.SetValue(value)
		}
	case TypeDate:
		if iso, ok := NormalizeDate(value); ok {
			ref.SetValue(iso)
		} else {
			// Fail-soft: keep the dictated text rather than reject.
			ref.SetValue(value)
		}
	default:
		e.typeValue(ref, value)
	}

	ref.ScrollIntoView()
	ref.Highlight(true)
	ref.DispatchInput()
	ref.DispatchChange()
}

// typeValue simulates character-by-character typing. The full value is
// always committed before the field counts as filled.
func (e *Engine) typeValue(ref page.Field, value string) {
	runes := []rune(value)
	for i := range runes {
		ref.SetValue(string(runes[:i+1]))
		ref.DispatchInput()
		if d := e.typeDelay(); d > 0 {
			time.Sleep(d)
		}
	}
	ref.SetValue(value)
}

func (e *Engine) focusCurrent() {
	if f := e.CurrentField(); f != nil {
		f.Ref.ScrollIntoView()
		f.Ref.Focus()
		f.Ref.Highlight(true)
	}
}

func (e *Engine) unhighlightCurrent() {
	if e.cursor < len(e.fields) {
		e.fields[e.cursor].Ref.Highlight(false)
		e.fields[e.cursor].Ref.Blur()
	}
}

// affirmatives and negatives map natural-language answers onto
// checked state.
var affirmatives = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "sure": true,
	"agree": true, "correct": true, "true": true, "ok": true, "okay": true,
}

var negatives = map[string]bool{
	"no": true, "nope": true, "nah": true,
	"disagree": true, "wrong": true, "false": true, "incorrect": true,
}

// coerceYesNo maps an utterance to a checked state. Unrecognized
// answers report false in ok.
func coerceYesNo(utterance string) (checked, ok bool) {
	s := strings.ToLower(strings.TrimSpace(strings.Trim(utterance, ".!,")))
	if affirmatives[s] {
		return true, true
	}
	if negatives[s] {
		return false, true
	}
	return false, false
}

// matchOption finds the first option matching the utterance, exact
// first then case-insensitive substring in either direction.
func matchOption(options []string, utterance string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(utterance))
	if needle == "" {
		return "", false
	}
	for _, opt := range options {
		if strings.ToLower(opt) == needle {
			return opt, true
		}
	}
	for _, opt := range options {
		lower := strings.ToLower(opt)
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			return opt, true
		}
	}
	return "", false
}
