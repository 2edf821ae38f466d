package stt

import (
	"context"
	"sync"
)

// Mock implements Transcriber for testing.
type Mock struct {
	// TranscribeFunc is called when Transcribe is invoked.
	// If nil, returns a fixed transcript.
	TranscribeFunc func(ctx context.Context, audio []byte, format string) (string, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a Transcribe invocation for verification.
type MockCall struct {
	Audio  []byte
	Format string
}

// NewMock creates a mock that returns a fixed transcript.
func NewMock(transcript string) *Mock {
	return &Mock{
		TranscribeFunc: func(ctx context.Context, audio []byte, format string) (string, error) {
			return transcript, nil
		},
	}
}

// MockError creates a mock that always fails with err.
func MockError(err error) *Mock {
	return &Mock{
		TranscribeFunc: func(ctx context.Context, audio []byte, format string) (string, error) {
			return "", err
		},
	}
}

// Transcribe calls TranscribeFunc and records the call.
func (m *Mock) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	m.mu.Lock()
	buf := make([]byte, len(audio))
	copy(buf, audio)
	m.calls = append(m.calls, MockCall{Audio: buf, Format: format})
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, format)
	}
	return "", ErrEmptyAudio
}

// Calls returns all recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Transcribe invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Verify Mock implements Transcriber at compile time.
var _ Transcriber = (*Mock)(nil)
