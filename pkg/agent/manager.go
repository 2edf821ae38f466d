// Package agent manages mentor conversation sessions created over the
// REST API. Each agent keeps a bounded exchange history that feeds the
// conversation analysis endpoint.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxrelay/voxrelay/pkg/chat"
)

// ErrNotFound is returned when no agent exists with the given ID.
var ErrNotFound = errors.New("agent not found")

// DefaultMaxHistory bounds the number of exchanges kept per agent.
const DefaultMaxHistory = 20

// Exchange is one user message and the mentor's reply.
type Exchange struct {
	Message string    `json:"message"`
	Reply   string    `json:"reply"`
	At      time.Time `json:"at"`
}

// Agent is one mentor session.
type Agent struct {
	ID        string    `json:"agentId"`
	CreatedAt time.Time `json:"createdAt"`

	mu      sync.Mutex
	history []Exchange
	maxHist int
}

// record appends an exchange, dropping the oldest past the history bound.
func (a *Agent) record(message, reply string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append(a.history, Exchange{
		Message: message,
		Reply:   reply,
		At:      time.Now(),
	})
	if len(a.history) > a.maxHist {
		a.history = a.history[len(a.history)-a.maxHist:]
	}
}

// History returns a copy of the agent's exchange history.
func (a *Agent) History() []Exchange {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Exchange, len(a.history))
	copy(out, a.history)
	return out
}

// Manager tracks active agents and routes their conversations through
// a chat responder. Safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	agents    map[string]*Agent
	responder chat.Responder
	maxHist   int
	logger    *slog.Logger
}

// NewManager creates a manager backed by the given responder.
func NewManager(responder chat.Responder) *Manager {
	return &Manager{
		agents:    make(map[string]*Agent),
		responder: responder,
		maxHist:   DefaultMaxHistory,
		logger:    slog.Default().With("component", "agent"),
	}
}

// Create starts a new agent session.
func (m *Manager) Create() *Agent {
	agent := &Agent{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		maxHist:   m.maxHist,
	}

	m.mu.Lock()
	m.agents[agent.ID] = agent
	count := len(m.agents)
	m.mu.Unlock()

	m.logger.Info("agent created", "agent_id", agent.ID, "active", count)
	return agent
}

// Get returns the agent with the given ID.
func (m *Manager) Get(id string) (*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agent, ok := m.agents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return agent, nil
}

// Stop removes the agent with the given ID.
func (m *Manager) Stop(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.agents[id]; !ok {
		return ErrNotFound
	}
	delete(m.agents, id)

	m.logger.Info("agent stopped", "agent_id", id, "active", len(m.agents))
	return nil
}

// Count returns the number of active agents.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents)
}

// Converse sends a message through the agent's session and records
// the exchange.
func (m *Manager) Converse(ctx context.Context, id, message string) (string, error) {
	agent, err := m.Get(id)
	if err != nil {
		return "", err
	}

	reply, err := m.responder.Reply(ctx, message)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", id, err)
	}

	agent.record(message, reply)
	return reply, nil
}

// AnalyzeRequest carries optional material to review alongside the
// agent's conversation history.
type AnalyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Question string `json:"question"`
}

// Analyze asks the responder to review the agent's conversation so far,
// together with any code the student submitted.
func (m *Manager) Analyze(ctx context.Context, id string, req AnalyzeRequest) (string, error) {
	agent, err := m.Get(id)
	if err != nil {
		return "", err
	}

	history := agent.History()
	if len(history) == 0 && req.Code == "" {
		return "", errors.New("nothing to analyze")
	}

	var b strings.Builder
	b.WriteString("Review this mentoring session and summarize how the student is doing, what they have understood, and what to focus on next.\n")
	if req.Question != "" {
		b.WriteString("The student asks: ")
		b.WriteString(req.Question)
		b.WriteString("\n")
	}
	if req.Code != "" {
		b.WriteString("\nTheir ")
		if req.Language != "" {
			b.WriteString(req.Language)
			b.WriteString(" ")
		}
		b.WriteString("code:\n")
		b.WriteString(req.Code)
		b.WriteString("\n")
	}
	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, ex := range history {
			b.WriteString("Student: ")
			b.WriteString(ex.Message)
			b.WriteString("\nMentor: ")
			b.WriteString(ex.Reply)
			b.WriteString("\n")
		}
	}

	analysis, err := m.responder.Reply(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("analyze agent %s: %w", id, err)
	}
	return analysis, nil
}
