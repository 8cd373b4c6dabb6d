// Package speech wraps an event-driven speech-recognition capability in an
// explicit state machine with typed callbacks.
//
// Browser recognition APIs are callback-based and quirky; the Input type
// isolates callers from those quirks behind a single-shot cycle of idle,
// listening, then recognized or error, and back to idle. Only the final
// transcript is ever surfaced; interim results stay internal.
package speech

import (
	"log/slog"
	"sync"
)

// State is the recognition state.
type State int

const (
	// StateIdle indicates no recognition in progress.
	StateIdle State = iota
	// StateListening indicates the recognizer is capturing audio.
	StateListening
)

// String returns a human-readable state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	default:
		return "unknown"
	}
}

// Recognizer is the external speech-recognition collaborator.
// Implementations bridge a browser SpeechRecognition object (or a test
// script); they deliver events through the registered callbacks.
type Recognizer interface {
	// Start begins a single-shot recognition in the given locale.
	Start(lang string) error

	// Abort hard-stops recognition. No result event follows.
	Abort()

	// OnResult registers the transcript callback. final is false for
	// interim hypotheses.
	OnResult(fn func(transcript string, final bool))

	// OnEnd registers the end-of-capture callback.
	OnEnd(fn func())

	// OnError registers the error callback with the engine's reason
	// string (e.g. "no-speech", "not-allowed").
	OnError(fn func(reason string))
}

// Input is the single-shot speech input state machine.
type Input struct {
	rec    Recognizer
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	aborted bool

	onResult          func(transcript string)
	onListeningChange func(listening bool)
	onError           func(reason string)
}

// NewInput wraps a recognizer. Callbacks should be registered before the
// first Start.
func NewInput(rec Recognizer, logger *slog.Logger) *Input {
	in := &Input{
		rec:    rec,
		logger: logger.With("component", "speech.input"),
	}
	rec.OnResult(in.handleResult)
	rec.OnEnd(in.handleEnd)
	rec.OnError(in.handleError)
	return in
}

// OnResult sets the callback invoked with the final transcript.
func (in *Input) OnResult(fn func(transcript string)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.onResult = fn
}

// OnListeningChange sets the callback invoked on listening transitions.
func (in *Input) OnListeningChange(fn func(listening bool)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.onListeningChange = fn
}

// OnError sets the callback invoked with the failure reason.
// The input has already returned to idle; the caller decides on retry.
func (in *Input) OnError(fn func(reason string)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.onError = fn
}

// Start begins listening in the given locale.
// Starting while already listening is a no-op.
func (in *Input) Start(lang string) error {
	in.mu.Lock()
	if in.state == StateListening {
		in.mu.Unlock()
		return nil
	}
	in.state = StateListening
	in.aborted = false
	notify := in.onListeningChange
	in.mu.Unlock()

	if notify != nil {
		notify(true)
	}

	if err := in.rec.Start(lang); err != nil {
		in.toIdle()
		return err
	}
	in.logger.Debug("listening", "lang", lang)
	return nil
}

// Stop hard-stops an in-flight recognition. Any partial result is
// discarded. Stopping while idle is a no-op.
func (in *Input) Stop() {
	in.mu.Lock()
	if in.state != StateListening {
		in.mu.Unlock()
		return
	}
	in.aborted = true
	in.mu.Unlock()

	in.rec.Abort()
	in.toIdle()
}

// State returns the current state.
func (in *Input) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// handleResult receives recognizer transcripts. Interim hypotheses are
// dropped; the final transcript completes the cycle.
func (in *Input) handleResult(transcript string, final bool) {
	if !final {
		return
	}

	in.mu.Lock()
	deliver := in.state == StateListening && !in.aborted
	fn := in.onResult
	in.mu.Unlock()

	in.toIdle()

	if deliver && fn != nil {
		fn(transcript)
	}
}

// handleEnd covers recognizers that end without a final result
// (silence timeout). The state simply returns to idle.
func (in *Input) handleEnd() {
	in.toIdle()
}

// handleError surfaces the reason and resets to idle.
func (in *Input) handleError(reason string) {
	in.mu.Lock()
	wasListening := in.state == StateListening && !in.aborted
	fn := in.onError
	in.mu.Unlock()

	in.toIdle()

	if wasListening && fn != nil {
		in.logger.Warn("recognition error", "reason", reason)
		fn(reason)
	}
}

// toIdle transitions to idle, notifying the listening callback once.
func (in *Input) toIdle() {
	in.mu.Lock()
	changed := in.state != StateIdle
	in.state = StateIdle
	notify := in.onListeningChange
	in.mu.Unlock()

	if changed && notify != nil {
		notify(false)
	}
}
