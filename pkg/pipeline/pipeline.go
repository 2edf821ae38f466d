// Package pipeline chains speech-to-text, chat, and text-to-speech
// into a single voice exchange: audio in, spoken reply out.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/voxrelay/voxrelay/pkg/chat"
	"github.com/voxrelay/voxrelay/pkg/stt"
	"github.com/voxrelay/voxrelay/pkg/tts"
)

// Timing holds per-stage latencies for one exchange.
type Timing struct {
	Transcribe time.Duration
	Reply      time.Duration
	Synthesize time.Duration
	Total      time.Duration
}

// Result is the output of one complete voice exchange.
type Result struct {
	Transcript       string
	Reply            string
	Audio            []byte
	AudioContentType string
	Timing           Timing
}

// Pipeline runs the three stages sequentially. Each stage only starts
// after the previous one succeeds; a failure aborts the exchange.
type Pipeline struct {
	stt    stt.Transcriber
	chat   chat.Responder
	tts    tts.Synthesizer
	logger *slog.Logger
}

// New creates a pipeline from the three stage implementations.
func New(transcriber stt.Transcriber, responder chat.Responder, synthesizer tts.Synthesizer) *Pipeline {
	return &Pipeline{
		stt:    transcriber,
		chat:   responder,
		tts:    synthesizer,
		logger: slog.Default().With("component", "pipeline"),
	}
}

// Run executes one exchange: transcribe the audio, generate a reply,
// synthesize the reply as speech. Errors are wrapped with the stage name.
func (p *Pipeline) Run(ctx context.Context, audio []byte, format string) (*Result, error) {
	start := time.Now()

	transcript, err := p.stt.Transcribe(ctx, audio, format)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	transcribeDone := time.Now()

	p.logger.Debug("transcribed utterance",
		"bytes", len(audio),
		"format", format,
		"transcript_len", len(transcript),
	)

	reply, err := p.chat.Reply(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("reply: %w", err)
	}
	replyDone := time.Now()

	speech, err := p.tts.Synthesize(ctx, reply)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	done := time.Now()

	result := &Result{
		Transcript:       transcript,
		Reply:            reply,
		Audio:            speech.Audio,
		AudioContentType: speech.ContentType,
		Timing: Timing{
			Transcribe: transcribeDone.Sub(start),
			Reply:      replyDone.Sub(transcribeDone),
			Synthesize: done.Sub(replyDone),
			Total:      done.Sub(start),
		},
	}

	p.logger.Info("exchange complete",
		"transcript_len", len(transcript),
		"reply_len", len(reply),
		"audio_bytes", len(speech.Audio),
		"total_ms", result.Timing.Total.Milliseconds(),
	)

	return result, nil
}
