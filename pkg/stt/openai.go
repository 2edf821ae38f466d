package stt

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the transcription model used when none is configured.
const DefaultModel = "whisper-1"

// OpenAI implements Transcriber using the OpenAI audio transcription API.
type OpenAI struct {
	client oai.Client
	model  string
	logger *slog.Logger
}

// OpenAIOption configures the OpenAI transcriber.
type OpenAIOption func(*OpenAI, *[]option.RequestOption)

// WithModel overrides the transcription model.
func WithModel(model string) OpenAIOption {
	return func(o *OpenAI, _ *[]option.RequestOption) {
		o.model = model
	}
}

// WithBaseURL overrides the API base URL. Used in tests and for
// OpenAI-compatible gateways.
func WithBaseURL(url string) OpenAIOption {
	return func(_ *OpenAI, reqOpts *[]option.RequestOption) {
		*reqOpts = append(*reqOpts, option.WithBaseURL(url))
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) OpenAIOption {
	return func(o *OpenAI, _ *[]option.RequestOption) {
		o.logger = logger
	}
}

// NewOpenAI creates a whisper-backed transcriber.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	o := &OpenAI{
		model:  DefaultModel,
		logger: slog.Default(),
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(o, &reqOpts)
	}
	o.logger = o.logger.With("component", "stt.openai")
	o.client = oai.NewClient(reqOpts...)

	return o, nil
}

// Transcribe implements Transcriber.
func (o *OpenAI) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	if format == "" {
		format = "webm"
	}

	resp, err := o.client.Audio.Transcriptions.New(ctx, oai.AudioTranscriptionNewParams{
		Model: oai.AudioModel(o.model),
		File:  oai.File(bytes.NewReader(audio), "audio."+format, "audio/"+format),
	})
	if err != nil {
		return "", fmt.Errorf("stt: transcription request: %w", err)
	}

	o.logger.Debug("transcribed audio",
		"bytes", len(audio),
		"format", format,
		"chars", len(resp.Text),
	)

	return resp.Text, nil
}

// Verify OpenAI implements Transcriber at compile time.
var _ Transcriber = (*OpenAI)(nil)
