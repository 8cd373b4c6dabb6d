package avatar

import "sync"

// MockCapability records every renderer call for tests.
type MockCapability struct {
	mu sync.Mutex

	morphs  []string
	colors  []string
	actives []bool

	starts    int
	stops     int
	destroyed bool
}

var _ Capability = (*MockCapability)(nil)

func NewMockCapability() *MockCapability {
	return &MockCapability{}
}

func (m *MockCapability) MorphTo(shape string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.morphs = append(m.morphs, shape)
}

func (m *MockCapability) SetColor(rgb string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.colors = append(m.colors, rgb)
}

func (m *MockCapability) SetActive(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actives = append(m.actives, active)
}

func (m *MockCapability) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
}

func (m *MockCapability) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}

func (m *MockCapability) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = true
}

// Morphs returns a copy of all shape commands.
func (m *MockCapability) Morphs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.morphs))
	copy(out, m.morphs)
	return out
}

// LastMorph returns the most recent shape command.
func (m *MockCapability) LastMorph() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.morphs) == 0 {
		return ""
	}
	return m.morphs[len(m.morphs)-1]
}

// LastColor returns the most recent color command.
func (m *MockCapability) LastColor() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.colors) == 0 {
		return ""
	}
	return m.colors[len(m.colors)-1]
}

// LastActive returns the most recent SetActive argument.
func (m *MockCapability) LastActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.actives) == 0 {
		return false
	}
	return m.actives[len(m.actives)-1]
}

// StartCount, StopCount and Destroyed expose lifecycle calls.
func (m *MockCapability) StartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

func (m *MockCapability) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

func (m *MockCapability) Destroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}
