package relay

import (
	"errors"
	"fmt"
)

// Session state
const (
	StateIdle       = "idle"
	StateCollecting = "collecting"
)

var (
	// ErrNotCollecting is returned for audio frames outside an utterance.
	ErrNotCollecting = errors.New("no utterance in progress")

	// ErrAlreadyCollecting is returned for a start frame during an utterance.
	ErrAlreadyCollecting = errors.New("utterance already in progress")

	// ErrNoAudio is returned when an utterance ends with no audio collected.
	ErrNoAudio = errors.New("No audio data received")
)

// Session accumulates binary audio frames for one utterance at a time.
// It is a per-connection state machine: Begin opens an utterance,
// Append buffers chunks, Take closes it and returns the full audio.
// Not safe for concurrent use; each connection owns one session and
// drives it from its read loop.
type Session struct {
	state    string
	format   string
	audio    []byte
	maxBytes int
}

// NewSession creates an idle session. maxBytes of 0 means no limit.
func NewSession(maxBytes int) *Session {
	return &Session{
		state:    StateIdle,
		maxBytes: maxBytes,
	}
}

// State returns the current state.
func (s *Session) State() string {
	return s.state
}

// Format returns the audio format declared by the start frame.
func (s *Session) Format() string {
	return s.format
}

// Begin opens a new utterance with the given audio format.
func (s *Session) Begin(format string) error {
	if s.state != StateIdle {
		return ErrAlreadyCollecting
	}

	s.state = StateCollecting
	s.format = format
	s.audio = s.audio[:0]
	return nil
}

// Append buffers an audio chunk for the current utterance.
func (s *Session) Append(chunk []byte) error {
	if s.state != StateCollecting {
		return ErrNotCollecting
	}

	if s.maxBytes > 0 && len(s.audio)+len(chunk) > s.maxBytes {
		return fmt.Errorf("utterance exceeds %d byte limit", s.maxBytes)
	}

	s.audio = append(s.audio, chunk...)
	return nil
}

// Take closes the current utterance and returns the collected audio
// and its format. The session returns to idle regardless of outcome.
// Ending with no utterance open reports the same missing-audio error
// as ending an empty one, so clients see a single failure mode.
func (s *Session) Take() ([]byte, string, error) {
	if s.state != StateCollecting {
		return nil, "", ErrNoAudio
	}

	format := s.format
	audio := make([]byte, len(s.audio))
	copy(audio, s.audio)

	s.Reset()

	if len(audio) == 0 {
		return nil, "", ErrNoAudio
	}

	return audio, format, nil
}

// Reset discards any buffered audio and returns the session to idle.
func (s *Session) Reset() {
	s.state = StateIdle
	s.format = ""
	s.audio = s.audio[:0]
}

// Size returns the number of audio bytes buffered so far.
func (s *Session) Size() int {
	return len(s.audio)
}
