package notification

import (
	"context"
	"sync"
)

// MockTransport is an in-memory transport for testing. It records enqueued
// messages and can be set to fail.
type MockTransport struct {
	// EnqueueFunc allows customizing enqueue behavior.
	EnqueueFunc func(ctx context.Context, msg Message) error

	mu       sync.Mutex
	enqueued []Message
}

// NewMockTransport creates a new mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Enqueue records the message, or delegates to EnqueueFunc when set.
func (m *MockTransport) Enqueue(ctx context.Context, msg Message) error {
	if m.EnqueueFunc != nil {
		if err := m.EnqueueFunc(ctx, msg); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, msg)
	return nil
}

// Enqueued returns a copy of all recorded messages.
func (m *MockTransport) Enqueued() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.enqueued))
	copy(out, m.enqueued)
	return out
}
