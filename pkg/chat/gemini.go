package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the Gemini model used when none is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini implements Responder using Google's generative AI API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	logger *slog.Logger
}

// GeminiOption configures the Gemini responder.
type GeminiOption func(*geminiConfig)

type geminiConfig struct {
	model        string
	systemPrompt string
	maxTokens    int32
	logger       *slog.Logger
}

// WithGeminiModel overrides the Gemini model name.
func WithGeminiModel(model string) GeminiOption {
	return func(c *geminiConfig) {
		c.model = model
	}
}

// WithGeminiSystemPrompt overrides the default mentoring system prompt.
func WithGeminiSystemPrompt(prompt string) GeminiOption {
	return func(c *geminiConfig) {
		c.systemPrompt = prompt
	}
}

// WithGeminiLogger sets the structured logger.
func WithGeminiLogger(logger *slog.Logger) GeminiOption {
	return func(c *geminiConfig) {
		c.logger = logger
	}
}

// NewGemini creates a Gemini-backed responder.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	cfg := &geminiConfig{
		model:        DefaultGeminiModel,
		systemPrompt: DefaultSystemPrompt,
		maxTokens:    DefaultMaxTokens,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chat: create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(cfg.systemPrompt)},
	}
	model.SetTemperature(DefaultTemperature)
	model.SetMaxOutputTokens(cfg.maxTokens)

	return &Gemini{
		client: client,
		model:  model,
		name:   cfg.model,
		logger: cfg.logger.With("component", "chat.gemini"),
	}, nil
}

// Reply implements Responder.
func (g *Gemini) Reply(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("chat: gemini request: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyReply
	}

	var reply string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			reply += string(text)
		}
	}
	if reply == "" {
		return "", ErrEmptyReply
	}

	g.logger.Debug("generated reply",
		"prompt_chars", len(message),
		"reply_chars", len(reply),
		"model", g.name,
	)

	return reply, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Verify Gemini implements Responder at compile time.
var _ Responder = (*Gemini)(nil)
