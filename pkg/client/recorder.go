package client

import (
	"errors"
	"io"
	"sync"
	"time"
)

// Recorder captures audio and delivers it in chunks while active.
// Implementations wrap whatever actually produces audio: a microphone,
// a file, or a fixed buffer in tests.
type Recorder interface {
	// Start begins capturing. onChunk is called with each chunk until
	// Stop; interval suggests how often chunks should be emitted.
	Start(interval time.Duration, onChunk func([]byte)) error

	// Stop ends capturing. No onChunk calls happen after Stop returns.
	Stop() error
}

// ReaderRecorder streams audio from an io.Reader, emitting fixed-size
// chunks at the requested interval. Useful for replaying recorded files.
type ReaderRecorder struct {
	r         io.Reader
	chunkSize int

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// DefaultChunkSize is the read size per emitted chunk.
const DefaultChunkSize = 16 * 1024

// NewReaderRecorder creates a recorder that replays r. chunkSize of 0
// uses DefaultChunkSize.
func NewReaderRecorder(r io.Reader, chunkSize int) *ReaderRecorder {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ReaderRecorder{r: r, chunkSize: chunkSize}
}

// Start begins emitting chunks from the reader. Emission stops at EOF
// or when Stop is called.
func (r *ReaderRecorder) Start(interval time.Duration, onChunk func([]byte)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("recorder already running")
	}
	r.running = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go r.run(interval, onChunk)

	return nil
}

func (r *ReaderRecorder) run(interval time.Duration, onChunk func([]byte)) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	buf := make([]byte, r.chunkSize)
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			n, err := r.r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				onChunk(chunk)
			}
			if err != nil {
				return
			}
		}
	}
}

// Stop ends emission and waits for the last chunk callback to finish.
func (r *ReaderRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}
	r.running = false

	close(r.stop)
	<-r.done
	return nil
}

// Verify ReaderRecorder implements Recorder at compile time.
var _ Recorder = (*ReaderRecorder)(nil)
