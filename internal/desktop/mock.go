package desktop

import (
	"context"
	"sync"
)

// MockPlatform is a scripted Platform. Permission requests block until
// Resolve is called; displays are recorded.
type MockPlatform struct {
	mu         sync.Mutex
	state      State
	decisions  chan decision
	requests   int
	displays   []Message
	displayErr error
}

type decision struct {
	granted bool
	err     error
}

// NewMockPlatform returns a mock reporting state as its permission state.
func NewMockPlatform(state State) *MockPlatform {
	return &MockPlatform{
		state:     state,
		decisions: make(chan decision, 16),
	}
}

// PermissionState implements Platform.
func (m *MockPlatform) PermissionState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// RequestPermission implements Platform.
func (m *MockPlatform) RequestPermission(ctx context.Context) (bool, error) {
	m.mu.Lock()
	m.requests++
	m.mu.Unlock()
	select {
	case d := <-m.decisions:
		return d.granted, d.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Resolve settles the next (or current) permission request.
func (m *MockPlatform) Resolve(granted bool, err error) {
	m.decisions <- decision{granted: granted, err: err}
}

// Requests returns how many permission requests were made.
func (m *MockPlatform) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// FailDisplays makes every later Display return err.
func (m *MockPlatform) FailDisplays(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.displayErr = err
}

// Display implements Platform.
func (m *MockPlatform) Display(_ context.Context, msg Message) error {
	m.mu.Lock()
	m.displays = append(m.displays, msg)
	err := m.displayErr
	m.mu.Unlock()
	return err
}

// Displayed returns the recorded displays.
func (m *MockPlatform) Displayed() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.displays...)
}

