// Package chat generates assistant replies for transcribed utterances.
//
// Replies are spoken back to the user, so providers are tuned for short
// conversational output: a mentoring system prompt, a low token ceiling,
// and moderate temperature.
package chat

import (
	"context"
	"errors"
)

// Common errors returned by responders.
var (
	ErrNoAPIKey     = errors.New("chat: API key required")
	ErrEmptyMessage = errors.New("chat: empty message")
	ErrEmptyReply   = errors.New("chat: provider returned no reply")
)

// Defaults shared by providers.
const (
	DefaultMaxTokens   = 150
	DefaultTemperature = 0.7
)

// DefaultSystemPrompt steers the assistant toward spoken mentoring replies.
const DefaultSystemPrompt = "You are a programming mentor focused on helping users learn and grow. Your approach should:" +
	"\n1. Ask probing questions to help users think through problems" +
	"\n2. Guide users to discover solutions themselves rather than providing direct answers" +
	"\n3. Explain concepts using analogies and examples" +
	"\n4. Encourage best practices and good coding habits" +
	"\n5. Help users understand the 'why' behind programming concepts" +
	"\n6. Break down complex problems into smaller, manageable steps" +
	"\n7. Provide hints and suggestions rather than complete solutions" +
	"\n8. Celebrate user progress and encourage learning from mistakes" +
	"\nKeep responses concise and conversational, as they will be spoken."

// Responder generates an assistant reply for one user message.
type Responder interface {
	Reply(ctx context.Context, message string) (string, error)
}
