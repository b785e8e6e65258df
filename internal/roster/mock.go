package roster

import (
	"context"
	"fmt"
	"sync"
)

// MockSource implements Source for testing. The snapshot it serves is set
// with SetSnapshot; SimulateChange pushes a tick on the change channel.
type MockSource struct {
	mu        sync.Mutex
	connected bool
	closed    bool
	snapshot  Snapshot
	snapErr   error
	changes   chan struct{}
}

// NewMockSource creates a MockSource with an empty roster.
func NewMockSource() *MockSource {
	return &MockSource{changes: make(chan struct{}, 1)}
}

// Connect marks the source as connected.
func (m *MockSource) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mock source: already closed")
	}
	m.connected = true
	return nil
}

// Snapshot returns the configured snapshot or the injected error.
func (m *MockSource) Snapshot(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return Snapshot{}, fmt.Errorf("mock source: not connected")
	}
	if m.snapErr != nil {
		return Snapshot{}, m.snapErr
	}
	return m.snapshot, nil
}

// Changes returns the tick channel.
func (m *MockSource) Changes() <-chan struct{} {
	return m.changes
}

// Close marks the source as closed.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.connected = false
	return nil
}

// SetSnapshot replaces the snapshot served to callers.
func (m *MockSource) SetSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = s
}

// SetError makes Snapshot fail with err until cleared with nil.
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapErr = err
}

// SimulateChange pushes a coalesced tick on the change channel.
func (m *MockSource) SimulateChange() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}
