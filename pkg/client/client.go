// Package client provides a Go client for the audio relay WebSocket
// endpoint: it buffers recorded audio into one utterance, sends it when
// recording stops, and surfaces the reply text and synthesized speech
// through callbacks.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxrelay/voxrelay/pkg/protocol"
)

// DefaultChunkInterval is how often a recorder emits audio chunks,
// mirroring the browser MediaRecorder timeslice.
const DefaultChunkInterval = 100 * time.Millisecond

// ErrNotConnected is returned when an operation needs an open connection.
var ErrNotConnected = errors.New("not connected")

// Client manages the WebSocket connection to the relay.
type Client struct {
	url      string
	recorder Recorder
	format   string

	ws   *websocket.Conn
	wsMu sync.Mutex

	// Callbacks
	OnText  func(content string)
	OnAudio func(audio []byte)
	OnError func(message string)

	mu        sync.Mutex
	connected bool
	listening bool

	// Utterance buffer, filled by the recorder between StartListening
	// and StopListening. Guarded separately so the recorder can append
	// while StopListening holds mu.
	bufMu sync.Mutex
	buf   []byte
}

// New creates a client for the relay at url, recording audio from rec.
func New(url string, rec Recorder, format string) *Client {
	if format == "" {
		format = "webm"
	}
	return &Client{
		url:      url,
		recorder: rec,
		format:   format,
	}
}

// Connect establishes the WebSocket connection and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("connect to relay: %w", err)
	}

	c.ws = ws
	c.connected = true

	go c.readLoop()

	return nil
}

// StartListening begins an utterance: it clears the utterance buffer
// and starts capture. Nothing is sent until StopListening.
func (c *Client) StartListening() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	if c.listening {
		return errors.New("already listening")
	}

	c.bufMu.Lock()
	c.buf = c.buf[:0]
	c.bufMu.Unlock()

	err := c.recorder.Start(DefaultChunkInterval, func(chunk []byte) {
		c.bufMu.Lock()
		c.buf = append(c.buf, chunk...)
		c.bufMu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("start recorder: %w", err)
	}

	c.listening = true
	return nil
}

// StopListening ends the utterance: it stops the recorder and sends the
// buffered audio as a start frame, one binary frame, and an end frame.
// The reply arrives later through OnText and OnAudio; it is safe to
// call when no utterance is in progress.
func (c *Client) StopListening() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.listening {
		return nil
	}
	c.listening = false

	if err := c.recorder.Stop(); err != nil {
		return fmt.Errorf("stop recorder: %w", err)
	}

	c.bufMu.Lock()
	audio := make([]byte, len(c.buf))
	copy(audio, c.buf)
	c.buf = c.buf[:0]
	c.bufMu.Unlock()

	if err := c.sendControl(protocol.NewStart(c.format)); err != nil {
		return err
	}
	if len(audio) > 0 {
		if err := c.sendBinary(audio); err != nil {
			return err
		}
	}
	return c.sendControl(protocol.NewEnd())
}

// Close stops any recording in progress and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.listening {
		c.listening = false
		if err := c.recorder.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop recorder: %w", err))
		}
	}

	if c.connected {
		c.connected = false
		if err := c.ws.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// readLoop dispatches incoming frames to the callbacks.
func (c *Client) readLoop() {
	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if c.OnAudio != nil {
				c.OnAudio(data)
			}

		case websocket.TextMessage:
			msg, err := protocol.Parse(data)
			if err != nil {
				continue
			}
			switch msg.Type {
			case protocol.TypeText:
				if c.OnText != nil {
					c.OnText(msg.Content)
				}
			case protocol.TypeError:
				if c.OnError != nil {
					c.OnError(msg.Message)
				}
			}
		}
	}
}

// sendControl writes a JSON control frame.
func (c *Client) sendControl(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// sendBinary writes an audio chunk.
func (c *Client) sendBinary(chunk []byte) error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	return c.ws.WriteMessage(websocket.BinaryMessage, chunk)
}
