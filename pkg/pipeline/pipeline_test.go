package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voxrelay/voxrelay/pkg/chat"
	"github.com/voxrelay/voxrelay/pkg/pipeline"
	"github.com/voxrelay/voxrelay/pkg/stt"
	"github.com/voxrelay/voxrelay/pkg/tts"
)

func TestRun(t *testing.T) {
	transcriber := stt.NewMock("what is a goroutine")
	responder := chat.NewMock("A goroutine is a lightweight thread.")
	synthesizer := tts.NewMock()

	p := pipeline.New(transcriber, responder, synthesizer)

	result, err := p.Run(context.Background(), []byte("webm-audio"), "webm")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Transcript != "what is a goroutine" {
		t.Errorf("unexpected transcript %q", result.Transcript)
	}
	if result.Reply != "A goroutine is a lightweight thread." {
		t.Errorf("unexpected reply %q", result.Reply)
	}
	if len(result.Audio) == 0 {
		t.Error("expected synthesized audio")
	}
	if result.AudioContentType != tts.ContentTypeMP3 {
		t.Errorf("unexpected content type %q", result.AudioContentType)
	}

	// The reply text, not the transcript, must reach synthesis.
	texts := synthesizer.Texts()
	if len(texts) != 1 || texts[0] != result.Reply {
		t.Errorf("synthesizer received %v, want reply text", texts)
	}

	// The transcript, not raw audio, must reach chat.
	messages := responder.Messages()
	if len(messages) != 1 || messages[0] != result.Transcript {
		t.Errorf("responder received %v, want transcript", messages)
	}
}

func TestRunTranscribeError(t *testing.T) {
	cause := errors.New("upstream unavailable")
	p := pipeline.New(stt.MockError(cause), chat.NewMock("reply"), tts.NewMock())

	_, err := p.Run(context.Background(), []byte("audio"), "webm")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "transcribe:") {
		t.Errorf("expected stage prefix, got %q", err.Error())
	}
}

func TestRunReplyErrorSkipsSynthesis(t *testing.T) {
	cause := errors.New("model overloaded")
	synthesizer := tts.NewMock()
	p := pipeline.New(stt.NewMock("hi"), chat.MockError(cause), synthesizer)

	_, err := p.Run(context.Background(), []byte("audio"), "webm")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "reply:") {
		t.Errorf("expected stage prefix, got %q", err.Error())
	}
	if synthesizer.CallCount() != 0 {
		t.Errorf("synthesis should not run after a chat failure, got %d calls", synthesizer.CallCount())
	}
}

func TestRunSynthesizeError(t *testing.T) {
	cause := errors.New("voice service down")
	p := pipeline.New(stt.NewMock("hi"), chat.NewMock("hello"), tts.MockError(cause))

	_, err := p.Run(context.Background(), []byte("audio"), "webm")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "synthesize:") {
		t.Errorf("expected stage prefix, got %q", err.Error())
	}
}
