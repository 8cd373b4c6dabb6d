package speech

import "sync"

// MockRecognizer implements Recognizer for testing.
// Tests script events by calling EmitResult/EmitEnd/EmitError.
type MockRecognizer struct {
	// StartErr, when set, is returned from Start.
	StartErr error

	mu       sync.Mutex
	started  []string
	aborts   int
	onResult func(transcript string, final bool)
	onEnd    func()
	onError  func(reason string)
}

// NewMockRecognizer creates a scriptable recognizer.
func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{}
}

// Start records the requested locale.
func (m *MockRecognizer) Start(lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartErr != nil {
		return m.StartErr
	}
	m.started = append(m.started, lang)
	return nil
}

// Abort records the hard stop.
func (m *MockRecognizer) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aborts++
}

// OnResult registers the transcript callback.
func (m *MockRecognizer) OnResult(fn func(transcript string, final bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onResult = fn
}

// OnEnd registers the end callback.
func (m *MockRecognizer) OnEnd(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd = fn
}

// OnError registers the error callback.
func (m *MockRecognizer) OnError(fn func(reason string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// EmitResult delivers a transcript event.
func (m *MockRecognizer) EmitResult(transcript string, final bool) {
	m.mu.Lock()
	fn := m.onResult
	m.mu.Unlock()
	if fn != nil {
		fn(transcript, final)
	}
}

// EmitEnd delivers an end-of-capture event.
func (m *MockRecognizer) EmitEnd() {
	m.mu.Lock()
	fn := m.onEnd
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// EmitError delivers an error event.
func (m *MockRecognizer) EmitError(reason string) {
	m.mu.Lock()
	fn := m.onError
	m.mu.Unlock()
	if fn != nil {
		fn(reason)
	}
}

// StartCount returns how many times Start succeeded.
func (m *MockRecognizer) StartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.started)
}

// LastLang returns the locale of the most recent Start.
func (m *MockRecognizer) LastLang() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.started) == 0 {
		return ""
	}
	return m.started[len(m.started)-1]
}

// AbortCount returns how many times Abort was called.
func (m *MockRecognizer) AbortCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aborts
}

// Verify MockRecognizer implements Recognizer at compile time.
var _ Recognizer = (*MockRecognizer)(nil)
