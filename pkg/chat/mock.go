package chat

import (
	"context"
	"sync"
)

// Mock implements Responder for testing.
type Mock struct {
	// ReplyFunc is called when Reply is invoked.
	// If nil, echoes the message back.
	ReplyFunc func(ctx context.Context, message string) (string, error)

	mu       sync.Mutex
	messages []string
}

// NewMock creates a mock that returns a fixed reply.
func NewMock(reply string) *Mock {
	return &Mock{
		ReplyFunc: func(ctx context.Context, message string) (string, error) {
			return reply, nil
		},
	}
}

// MockError creates a mock that always fails with err.
func MockError(err error) *Mock {
	return &Mock{
		ReplyFunc: func(ctx context.Context, message string) (string, error) {
			return "", err
		},
	}
}

// Reply calls ReplyFunc and records the message.
func (m *Mock) Reply(ctx context.Context, message string) (string, error) {
	m.mu.Lock()
	m.messages = append(m.messages, message)
	m.mu.Unlock()

	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, message)
	}
	return message, nil
}

// Messages returns all messages Reply received.
func (m *Mock) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

// CallCount returns the number of Reply invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Verify Mock implements Responder at compile time.
var _ Responder = (*Mock)(nil)
