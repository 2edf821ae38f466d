package relay_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/voxrelay/voxrelay/pkg/relay"
)

func TestSessionLifecycle(t *testing.T) {
	s := relay.NewSession(0)

	if s.State() != relay.StateIdle {
		t.Fatalf("new session state = %q, want idle", s.State())
	}

	if err := s.Begin("webm"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if s.State() != relay.StateCollecting {
		t.Errorf("state after Begin = %q, want collecting", s.State())
	}
	if s.Format() != "webm" {
		t.Errorf("format = %q, want webm", s.Format())
	}

	if err := s.Append([]byte("abc")); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := s.Append([]byte("def")); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	audio, format, err := s.Take()
	if err != nil {
		t.Fatalf("Take() error: %v", err)
	}
	if !bytes.Equal(audio, []byte("abcdef")) {
		t.Errorf("audio = %q, want chunks concatenated in order", audio)
	}
	if format != "webm" {
		t.Errorf("format = %q, want webm", format)
	}
	if s.State() != relay.StateIdle {
		t.Errorf("state after Take = %q, want idle", s.State())
	}
}

func TestSessionTakeWithoutAudio(t *testing.T) {
	s := relay.NewSession(0)

	if err := s.Begin("webm"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}

	_, _, err := s.Take()
	if !errors.Is(err, relay.ErrNoAudio) {
		t.Errorf("expected ErrNoAudio, got %v", err)
	}
	if s.State() != relay.StateIdle {
		t.Errorf("state = %q, want idle after empty Take", s.State())
	}
}

func TestSessionTakeWhileIdle(t *testing.T) {
	s := relay.NewSession(0)

	_, _, err := s.Take()
	if !errors.Is(err, relay.ErrNoAudio) {
		t.Errorf("expected ErrNoAudio, got %v", err)
	}
}

func TestSessionBeginWhileCollecting(t *testing.T) {
	s := relay.NewSession(0)

	if err := s.Begin("webm"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := s.Begin("webm"); !errors.Is(err, relay.ErrAlreadyCollecting) {
		t.Errorf("expected ErrAlreadyCollecting, got %v", err)
	}
}

func TestSessionAppendWhileIdle(t *testing.T) {
	s := relay.NewSession(0)

	if err := s.Append([]byte("abc")); !errors.Is(err, relay.ErrNotCollecting) {
		t.Errorf("expected ErrNotCollecting, got %v", err)
	}
	if s.State() != relay.StateIdle {
		t.Errorf("state = %q, want idle unchanged", s.State())
	}
}

func TestSessionDiscardsAudioBetweenUtterances(t *testing.T) {
	s := relay.NewSession(0)

	s.Begin("webm")
	s.Append([]byte("first"))
	if _, _, err := s.Take(); err != nil {
		t.Fatalf("Take() error: %v", err)
	}

	s.Begin("webm")
	s.Append([]byte("second"))
	audio, _, err := s.Take()
	if err != nil {
		t.Fatalf("Take() error: %v", err)
	}
	if !bytes.Equal(audio, []byte("second")) {
		t.Errorf("audio = %q, first utterance leaked into second", audio)
	}
}

func TestSessionMaxBytes(t *testing.T) {
	s := relay.NewSession(4)

	s.Begin("webm")
	if err := s.Append([]byte("abcd")); err != nil {
		t.Fatalf("Append() at limit error: %v", err)
	}
	if err := s.Append([]byte("e")); err == nil {
		t.Error("expected error appending past limit")
	}
}

func TestSessionReset(t *testing.T) {
	s := relay.NewSession(0)

	s.Begin("webm")
	s.Append([]byte("abc"))
	s.Reset()

	if s.State() != relay.StateIdle {
		t.Errorf("state = %q, want idle after Reset", s.State())
	}
	if s.Size() != 0 {
		t.Errorf("size = %d, want 0 after Reset", s.Size())
	}
}
