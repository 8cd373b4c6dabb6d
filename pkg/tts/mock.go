package tts

import (
	"context"
	"sync"
)

// MockProvider is a scriptable Provider for tests.
type MockProvider struct {
	mu sync.Mutex

	// SynthesizeFunc overrides the default canned synthesis.
	SynthesizeFunc func(ctx context.Context, req SpeakRequest) (*AudioResult, error)
	// HealthErr is returned by Health.
	HealthErr error
	// Directives reports directive support.
	Directives bool

	requests    []SpeakRequest
	healthCalls int
	closed      bool
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider returns a provider that synthesizes one byte of audio
// per character of input.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Synthesize(ctx context.Context, req SpeakRequest) (*AudioResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.SynthesizeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &AudioResult{
		Audio:     make([]byte, len(req.Text)),
		MIME:      "audio/mpeg",
		CharCount: len(req.Text),
	}, nil
}

func (m *MockProvider) Health(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthCalls++
	return m.HealthErr
}

func (m *MockProvider) SupportsDirectives() bool {
	return m.Directives
}

func (m *MockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Requests returns a copy of all synthesis requests seen so far.
func (m *MockProvider) Requests() []SpeakRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SpeakRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// SynthesizeCount returns how many synthesis calls were made.
func (m *MockProvider) SynthesizeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// HealthCount returns how many health probes were made.
func (m *MockProvider) HealthCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthCalls
}

// MockNative is a scriptable NativeSynth for tests. Each Speak call
// returns a channel the test resolves via FinishUtterance, or that
// Cancel resolves with ErrPlaybackStopped.
type MockNative struct {
	mu sync.Mutex

	utterances []Utterance
	active     chan error
	cancels    int
}

var _ NativeSynth = (*MockNative)(nil)

func NewMockNative() *MockNative {
	return &MockNative{}
}

func (m *MockNative) Speak(u Utterance) <-chan error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.utterances = append(m.utterances, u)
	m.active = make(chan error, 1)
	return m.active
}

func (m *MockNative) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels++
	if m.active != nil {
		m.active <- ErrPlaybackStopped
		m.active = nil
	}
}

// FinishUtterance completes the active utterance with err.
func (m *MockNative) FinishUtterance(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.active <- err
		m.active = nil
	}
}

// Utterances returns a copy of all spoken utterances.
func (m *MockNative) Utterances() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Utterance, len(m.utterances))
	copy(out, m.utterances)
	return out
}

// CancelCount returns how many times Cancel was called.
func (m *MockNative) CancelCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}

// MockPlayback is a scriptable Playback for tests.
type MockPlayback struct {
	mu sync.Mutex

	// PlayErrs is consumed one entry per Play call; nil entries mean
	// success. Once exhausted, Play succeeds.
	PlayErrs []error

	played []*AudioResult
	stops  int
}

var _ Playback = (*MockPlayback)(nil)

func NewMockPlayback() *MockPlayback {
	return &MockPlayback{}
}

func (m *MockPlayback) Play(ctx context.Context, result *AudioResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, result)
	if len(m.PlayErrs) > 0 {
		err := m.PlayErrs[0]
		m.PlayErrs = m.PlayErrs[1:]
		return err
	}
	return nil
}

func (m *MockPlayback) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}

// Played returns a copy of everything handed to Play.
func (m *MockPlayback) Played() []*AudioResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*AudioResult, len(m.played))
	copy(out, m.played)
	return out
}

// StopCount returns how many times Stop was called.
func (m *MockPlayback) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}
