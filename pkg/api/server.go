// Package api exposes the REST endpoints: pipeline stages invoked
// individually over HTTP, plus agent session management.
package api

import (
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/voxrelay/voxrelay/pkg/agent"
	"github.com/voxrelay/voxrelay/pkg/chat"
	"github.com/voxrelay/voxrelay/pkg/stt"
	"github.com/voxrelay/voxrelay/pkg/tts"
)

// Server holds the handlers for the REST API.
type Server struct {
	stt    stt.Transcriber
	chat   chat.Responder
	tts    tts.Synthesizer
	agents *agent.Manager
	logger *slog.Logger
}

// NewServer creates a REST API server over the given stages.
func NewServer(transcriber stt.Transcriber, responder chat.Responder, synthesizer tts.Synthesizer, agents *agent.Manager) *Server {
	return &Server{
		stt:    transcriber,
		chat:   responder,
		tts:    synthesizer,
		agents: agents,
		logger: slog.Default().With("component", "api"),
	}
}

// RegisterRoutes registers all API routes on a Fiber app.
func (s *Server) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/test", s.handleTest)
	api.Post("/transcribe", s.handleTranscribe)
	api.Post("/chat", s.handleChat)
	api.Post("/speak", s.handleSpeak)
	api.Post("/analyze", s.handleAnalyze)

	agents := api.Group("/agent")
	agents.Post("/create", s.handleAgentCreate)
	agents.Post("/stop", s.handleAgentStop)
}

// handleTest reports that the server is up.
func (s *Server) handleTest(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Server is running",
	})
}

// handleTranscribe transcribes a base64-encoded audio payload.
func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	var req struct {
		Audio  string `json:"audio"`
		Format string `json:"format"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Audio == "" {
		return c.Status(400).JSON(fiber.Map{"error": "audio is required"})
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "audio must be base64 encoded"})
	}

	format := req.Format
	if format == "" {
		format = "webm"
	}

	text, err := s.stt.Transcribe(c.Context(), audio, format)
	if err != nil {
		s.logger.Error("transcription failed", "bytes", len(audio), "error", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"text": text})
}

// handleChat generates a mentor reply for a message. With an agentId the
// exchange goes through that agent's session and is recorded for analysis.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
		AgentID string `json:"agentId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	var reply string
	var err error
	if req.AgentID != "" {
		reply, err = s.agents.Converse(c.Context(), req.AgentID, req.Message)
		if errors.Is(err, agent.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
	} else {
		reply, err = s.chat.Reply(c.Context(), req.Message)
	}
	if err != nil {
		s.logger.Error("chat failed", "error", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"reply": reply})
}

// handleSpeak synthesizes text and returns raw audio.
func (s *Server) handleSpeak(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Text == "" {
		return c.Status(400).JSON(fiber.Map{"error": "text is required"})
	}

	result, err := s.tts.Synthesize(c.Context(), req.Text)
	if err != nil {
		s.logger.Error("synthesis failed", "chars", len(req.Text), "error", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", result.ContentType)
	return c.Send(result.Audio)
}

// handleAgentCreate starts a new mentor agent session.
func (s *Server) handleAgentCreate(c *fiber.Ctx) error {
	a := s.agents.Create()
	return c.JSON(fiber.Map{
		"agentId": a.ID,
		"status":  "created",
	})
}

// handleAgentStop stops an agent session.
func (s *Server) handleAgentStop(c *fiber.Ctx) error {
	var req struct {
		AgentID string `json:"agentId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if req.AgentID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "agentId is required"})
	}

	if err := s.agents.Stop(req.AgentID); err != nil {
		if errors.Is(err, agent.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"agentId": req.AgentID,
		"status":  "stopped",
	})
}

// handleAnalyze reviews an agent's session: its conversation history
// plus any code the student submitted.
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var req struct {
		AgentID  string `json:"agentId"`
		Code     string `json:"code"`
		Language string `json:"language"`
		Question string `json:"question"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if req.AgentID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "agentId is required"})
	}

	analysis, err := s.agents.Analyze(c.Context(), req.AgentID, agent.AnalyzeRequest{
		Code:     req.Code,
		Language: req.Language,
		Question: req.Question,
	})
	if err != nil {
		if errors.Is(err, agent.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		s.logger.Error("analysis failed", "agent_id", req.AgentID, "error", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"analysis": analysis})
}
