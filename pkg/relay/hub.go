// Package relay accepts browser WebSocket connections that stream
// microphone audio and replies with synthesized speech. Each connection
// runs a start/audio/end protocol over one voice pipeline exchange.
package relay

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/voxrelay/voxrelay/pkg/pipeline"
	"github.com/voxrelay/voxrelay/pkg/protocol"
)

// DefaultProcessTimeout bounds one full transcribe-reply-synthesize pass.
const DefaultProcessTimeout = 60 * time.Second

// DefaultFormat is assumed when a start frame omits the audio format.
const DefaultFormat = "webm"

// Hub manages audio WebSocket connections from browser clients.
type Hub struct {
	pipeline       *pipeline.Pipeline
	logger         *slog.Logger
	processTimeout time.Duration
	maxAudioBytes  int

	// Stats
	connections         atomic.Int64
	framesReceived      atomic.Uint64
	utterancesProcessed atomic.Uint64
	errorsSent          atomic.Uint64
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithProcessTimeout bounds the processing time for one utterance.
func WithProcessTimeout(d time.Duration) HubOption {
	return func(h *Hub) {
		h.processTimeout = d
	}
}

// WithMaxAudioBytes limits buffered audio per utterance. 0 means no limit.
func WithMaxAudioBytes(n int) HubOption {
	return func(h *Hub) {
		h.maxAudioBytes = n
	}
}

// NewHub creates a hub that processes utterances through p.
func NewHub(p *pipeline.Pipeline, opts ...HubOption) *Hub {
	h := &Hub{
		pipeline:       p,
		logger:         slog.Default().With("component", "relay"),
		processTimeout: DefaultProcessTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers WebSocket routes on a Fiber app.
func (h *Hub) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/audio", websocket.New(h.handleAudio))
}

// handleAudio runs the read loop for one client connection. Processing
// happens inline, so a connection handles one utterance at a time.
func (h *Hub) handleAudio(c *websocket.Conn) {
	count := h.connections.Add(1)
	h.logger.Info("client connected", "connections", count)

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("connection handler panicked", "panic", r)
			h.sendError(c, "internal server error")
		}
		count := h.connections.Add(-1)
		h.logger.Info("client disconnected", "connections", count)
	}()

	session := NewSession(h.maxAudioBytes)

	for {
		msgType, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		switch msgType {
		case websocket.TextMessage:
			h.handleControl(c, session, data)

		case websocket.BinaryMessage:
			h.framesReceived.Add(1)
			if err := session.Append(data); err != nil {
				h.sendError(c, err.Error())
				if session.State() == StateCollecting {
					session.Reset()
				}
			}
		}
	}
}

// handleControl dispatches one JSON control frame.
func (h *Hub) handleControl(c *websocket.Conn, session *Session, data []byte) {
	msg, err := protocol.Parse(data)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	switch msg.Type {
	case protocol.TypeStart:
		format := msg.Format
		if format == "" {
			format = DefaultFormat
		}
		if err := session.Begin(format); err != nil {
			h.sendError(c, err.Error())
			session.Reset()
			return
		}
		h.logger.Debug("utterance started", "format", format)

	case protocol.TypeEnd:
		audio, format, err := session.Take()
		if err != nil {
			h.sendError(c, err.Error())
			return
		}
		h.process(c, audio, format)

	default:
		h.sendError(c, "unexpected message type: "+string(msg.Type))
	}
}

// process runs one utterance through the pipeline and streams the
// reply text and synthesized audio back to the client.
func (h *Hub) process(c *websocket.Conn, audio []byte, format string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.processTimeout)
	defer cancel()

	result, err := h.pipeline.Run(ctx, audio, format)
	if err != nil {
		h.logger.Error("utterance processing failed",
			"bytes", len(audio),
			"format", format,
			"error", err,
		)
		h.sendError(c, err.Error())
		return
	}

	h.utterancesProcessed.Add(1)

	text, err := protocol.NewText(result.Reply).Bytes()
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	if err := c.WriteMessage(websocket.TextMessage, text); err != nil {
		return
	}
	if err := c.WriteMessage(websocket.BinaryMessage, result.Audio); err != nil {
		return
	}

	h.logger.Info("utterance processed",
		"audio_in_bytes", len(audio),
		"audio_out_bytes", len(result.Audio),
		"total_ms", result.Timing.Total.Milliseconds(),
	)
}

// sendError sends an error frame; the connection stays open.
func (h *Hub) sendError(c *websocket.Conn, message string) {
	h.errorsSent.Add(1)

	data, err := protocol.NewError(message).Bytes()
	if err != nil {
		return
	}
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Warn("failed to send error frame", "error", err)
	}
}

// Stats contains hub statistics.
type Stats struct {
	Connections         int64  `json:"connections"`
	FramesReceived      uint64 `json:"frames_received"`
	UtterancesProcessed uint64 `json:"utterances_processed"`
	ErrorsSent          uint64 `json:"errors_sent"`
}

// GetStats returns hub statistics.
func (h *Hub) GetStats() Stats {
	return Stats{
		Connections:         h.connections.Load(),
		FramesReceived:      h.framesReceived.Load(),
		UtterancesProcessed: h.utterancesProcessed.Load(),
		ErrorsSent:          h.errorsSent.Load(),
	}
}
