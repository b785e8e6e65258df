package publish

import (
	"context"
	"sync"
)

// MockPublisher implements Publisher for testing. It records published
// messages and can fail on demand.
type MockPublisher struct {
	mu     sync.Mutex
	posts  []string
	pubErr error
}

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the message or returns the injected error.
func (m *MockPublisher) Publish(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pubErr != nil {
		return m.pubErr
	}
	m.posts = append(m.posts, text)
	return nil
}

// Posts returns a copy of everything published so far.
func (m *MockPublisher) Posts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.posts))
	copy(out, m.posts)
	return out
}

// SetError makes Publish fail with err until cleared with nil.
func (m *MockPublisher) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pubErr = err
}
