// Package protocol defines the WebSocket control messages exchanged between
// a voice client and the relay. Audio itself travels as raw binary frames;
// the JSON text frames defined here bracket and answer each utterance.
package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies the type of a JSON control frame.
type MessageType string

const (
	// Client → Relay messages
	TypeStart MessageType = "start" // begin an utterance, announces audio format
	TypeEnd   MessageType = "end"   // utterance complete, run the pipeline

	// Relay → Client messages
	TypeText  MessageType = "text"  // assistant reply text
	TypeError MessageType = "error" // utterance failed
)

// Message is the envelope for all JSON control frames. The set of valid
// types is closed; Parse rejects anything else with a *ProtocolError.
type Message struct {
	Type MessageType `json:"type"`

	// Format is the audio container format announced by a start message
	// (e.g. "webm").
	Format string `json:"format,omitempty"`

	// Content is the assistant reply carried by a text message.
	Content string `json:"content,omitempty"`

	// Message is the description carried by an error message.
	Message string `json:"message,omitempty"`
}

// ProtocolError reports a frame that could not be decoded as a valid
// control message.
type ProtocolError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol: %s: %v", e.Reason, e.Err)
	}
	return "protocol: " + e.Reason
}

// Unwrap returns the underlying decode error, if any.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewStart creates a start message announcing the audio format.
func NewStart(format string) *Message {
	return &Message{Type: TypeStart, Format: format}
}

// NewEnd creates an end message.
func NewEnd() *Message {
	return &Message{Type: TypeEnd}
}

// NewText creates a text message carrying the assistant reply.
func NewText(content string) *Message {
	return &Message{Type: TypeText, Content: content}
}

// NewError creates an error message.
func NewError(message string) *Message {
	return &Message{Type: TypeError, Message: message}
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// Parse decodes a JSON control frame. Malformed JSON, a missing type, and
// unrecognized types all yield a *ProtocolError.
func Parse(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, &ProtocolError{Reason: "malformed frame", Err: err}
	}

	switch msg.Type {
	case TypeStart, TypeEnd, TypeText, TypeError:
		return &msg, nil
	case "":
		return nil, &ProtocolError{Reason: "missing message type"}
	default:
		return nil, &ProtocolError{Reason: fmt.Sprintf("unknown message type %q", msg.Type)}
	}
}
