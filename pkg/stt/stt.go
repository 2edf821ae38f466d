// Package stt provides speech-to-text transcription for the relay.
//
// Audio arrives as an opaque container (webm from browser recorders, wav or
// mp3 from files) and is forwarded to the provider untouched; decoding is
// the provider's problem.
package stt

import (
	"context"
	"errors"
)

// Common errors returned by transcribers.
var (
	ErrNoAPIKey   = errors.New("stt: API key required")
	ErrEmptyAudio = errors.New("stt: empty audio")
)

// Transcriber converts recorded audio into text.
type Transcriber interface {
	// Transcribe converts one utterance of audio to text.
	// format is the container format the client announced (e.g. "webm").
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}
