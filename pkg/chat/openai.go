package chat

import (
	"context"
	"fmt"
	"log/slog"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is the completion model used when none is configured.
const DefaultOpenAIModel = "gpt-4-turbo-preview"

// OpenAI implements Responder using the OpenAI chat completions API.
type OpenAI struct {
	client       oai.Client
	model        string
	systemPrompt string
	maxTokens    int64
	temperature  float64
	logger       *slog.Logger
}

// OpenAIOption configures the OpenAI responder.
type OpenAIOption func(*OpenAI, *[]option.RequestOption)

// WithOpenAIModel overrides the completion model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAI, _ *[]option.RequestOption) {
		o.model = model
	}
}

// WithSystemPrompt overrides the default mentoring system prompt.
func WithSystemPrompt(prompt string) OpenAIOption {
	return func(o *OpenAI, _ *[]option.RequestOption) {
		o.systemPrompt = prompt
	}
}

// WithMaxTokens overrides the reply token ceiling.
func WithMaxTokens(n int64) OpenAIOption {
	return func(o *OpenAI, _ *[]option.RequestOption) {
		o.maxTokens = n
	}
}

// WithOpenAIBaseURL overrides the API base URL. Used in tests and for
// OpenAI-compatible gateways.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(_ *OpenAI, reqOpts *[]option.RequestOption) {
		*reqOpts = append(*reqOpts, option.WithBaseURL(url))
	}
}

// WithOpenAILogger sets the structured logger.
func WithOpenAILogger(logger *slog.Logger) OpenAIOption {
	return func(o *OpenAI, _ *[]option.RequestOption) {
		o.logger = logger
	}
}

// NewOpenAI creates a chat-completions-backed responder.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	o := &OpenAI{
		model:        DefaultOpenAIModel,
		systemPrompt: DefaultSystemPrompt,
		maxTokens:    DefaultMaxTokens,
		temperature:  DefaultTemperature,
		logger:       slog.Default(),
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(o, &reqOpts)
	}
	o.logger = o.logger.With("component", "chat.openai")
	o.client = oai.NewClient(reqOpts...)

	return o, nil
}

// Reply implements Responder.
func (o *OpenAI) Reply(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}

	completion, err := o.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(o.systemPrompt),
			oai.UserMessage(message),
		},
		Model:       oai.ChatModel(o.model),
		MaxTokens:   oai.Int(o.maxTokens),
		Temperature: oai.Float(o.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat: completion request: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}

	reply := completion.Choices[0].Message.Content
	o.logger.Debug("generated reply",
		"prompt_chars", len(message),
		"reply_chars", len(reply),
		"model", o.model,
	)

	return reply, nil
}

// Verify OpenAI implements Responder at compile time.
var _ Responder = (*OpenAI)(nil)
