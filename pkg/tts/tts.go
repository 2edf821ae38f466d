// Package tts converts assistant replies to speech.
//
// All providers return complete MP3 buffers suitable for immediate playback
// in a browser <audio> element; the relay forwards them as single binary
// WebSocket frames. Providers implement the Synthesizer interface, enabling
// switching (or chaining) without changing caller code.
//
// Example usage:
//
//	synth, _ := tts.NewOpenAI(
//	    tts.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    tts.WithVoice("nova"),
//	)
//	defer synth.Close()
//
//	result, _ := synth.Synthesize(ctx, "Hello world")
//	// result.Audio contains MP3 bytes
package tts

import (
	"context"
)

// ContentTypeMP3 is the media type of synthesized audio.
const ContentTypeMP3 = "audio/mpeg"

// Synthesizer defines the text-to-speech provider interface.
type Synthesizer interface {
	// Synthesize converts text to audio, returning the complete buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	// Audio contains the encoded audio data.
	Audio []byte

	// ContentType is the media type of Audio (e.g. "audio/mpeg").
	ContentType string

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the time to the complete response in milliseconds.
	LatencyMs int64
}
