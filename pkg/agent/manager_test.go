package agent_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voxrelay/voxrelay/pkg/agent"
	"github.com/voxrelay/voxrelay/pkg/chat"
)

func TestCreateAndStop(t *testing.T) {
	m := agent.NewManager(chat.NewMock("reply"))

	a := m.Create()
	if a.ID == "" {
		t.Fatal("expected non-empty agent ID")
	}
	if m.Count() != 1 {
		t.Errorf("count = %d, want 1", m.Count())
	}

	got, err := m.Get(a.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("Get() returned %q, want %q", got.ID, a.ID)
	}

	if err := m.Stop(a.ID); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("count = %d after stop, want 0", m.Count())
	}

	if _, err := m.Get(a.ID); !errors.Is(err, agent.ErrNotFound) {
		t.Errorf("expected ErrNotFound after stop, got %v", err)
	}
}

func TestStopUnknownAgent(t *testing.T) {
	m := agent.NewManager(chat.NewMock("reply"))

	if err := m.Stop("nope"); !errors.Is(err, agent.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	m := agent.NewManager(chat.NewMock("reply"))

	a := m.Create()
	b := m.Create()
	if a.ID == b.ID {
		t.Errorf("both agents got ID %q", a.ID)
	}
	if m.Count() != 2 {
		t.Errorf("count = %d, want 2", m.Count())
	}
}

func TestConverseRecordsHistory(t *testing.T) {
	responder := chat.NewMock("You should look at channels.")
	m := agent.NewManager(responder)
	a := m.Create()

	reply, err := m.Converse(context.Background(), a.ID, "how do goroutines talk")
	if err != nil {
		t.Fatalf("Converse() error: %v", err)
	}
	if reply != "You should look at channels." {
		t.Errorf("reply = %q", reply)
	}

	history := a.History()
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].Message != "how do goroutines talk" {
		t.Errorf("recorded message = %q", history[0].Message)
	}
	if history[0].Reply != reply {
		t.Errorf("recorded reply = %q", history[0].Reply)
	}
}

func TestConverseUnknownAgent(t *testing.T) {
	m := agent.NewManager(chat.NewMock("reply"))

	_, err := m.Converse(context.Background(), "nope", "hello")
	if !errors.Is(err, agent.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalyze(t *testing.T) {
	responder := chat.NewMock("The student is making progress.")
	m := agent.NewManager(responder)
	a := m.Create()

	if _, err := m.Converse(context.Background(), a.ID, "what is a slice"); err != nil {
		t.Fatalf("Converse() error: %v", err)
	}

	analysis, err := m.Analyze(context.Background(), a.ID, agent.AnalyzeRequest{})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if analysis != "The student is making progress." {
		t.Errorf("analysis = %q", analysis)
	}

	// The analysis prompt must carry the recorded conversation.
	messages := responder.Messages()
	last := messages[len(messages)-1]
	if !strings.Contains(last, "what is a slice") {
		t.Errorf("analysis prompt missing conversation: %q", last)
	}
}

func TestAnalyzeWithCode(t *testing.T) {
	responder := chat.NewMock("The loop never terminates.")
	m := agent.NewManager(responder)
	a := m.Create()

	_, err := m.Analyze(context.Background(), a.ID, agent.AnalyzeRequest{
		Code:     "for { fmt.Println(1) }",
		Language: "go",
		Question: "why does this hang",
	})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	messages := responder.Messages()
	last := messages[len(messages)-1]
	if !strings.Contains(last, "for { fmt.Println(1) }") {
		t.Errorf("analysis prompt missing code: %q", last)
	}
	if !strings.Contains(last, "why does this hang") {
		t.Errorf("analysis prompt missing question: %q", last)
	}
}

func TestAnalyzeNothingToReview(t *testing.T) {
	m := agent.NewManager(chat.NewMock("reply"))
	a := m.Create()

	if _, err := m.Analyze(context.Background(), a.ID, agent.AnalyzeRequest{}); err == nil {
		t.Error("expected error analyzing an empty session")
	}
}

func TestHistoryBounded(t *testing.T) {
	m := agent.NewManager(chat.NewMock("ok"))
	a := m.Create()

	for i := 0; i < agent.DefaultMaxHistory+5; i++ {
		if _, err := m.Converse(context.Background(), a.ID, "message"); err != nil {
			t.Fatalf("Converse() error: %v", err)
		}
	}

	if got := len(a.History()); got != agent.DefaultMaxHistory {
		t.Errorf("history length = %d, want %d", got, agent.DefaultMaxHistory)
	}
}
