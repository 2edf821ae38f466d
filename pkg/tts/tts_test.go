package tts_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/voxrelay/voxrelay/pkg/tts"
)

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := tts.NewOpenAI()
	if !errors.Is(err, tts.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestNewElevenLabsRequiresVoice(t *testing.T) {
	_, err := tts.NewElevenLabs(tts.WithAPIKey("key"))
	if !errors.Is(err, tts.ErrNoVoiceID) {
		t.Errorf("expected ErrNoVoiceID, got %v", err)
	}
}

func TestOpenAISynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var body struct {
			Model string `json:"model"`
			Voice string `json:"voice"`
			Input string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Model != tts.ModelTTS1 || body.Voice != tts.VoiceNova {
			t.Errorf("unexpected model/voice: %+v", body)
		}
		if body.Input != "hello" {
			t.Errorf("unexpected input %q", body.Input)
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("fake-mp3-bytes"))
	}))
	defer server.Close()

	synth, err := tts.NewOpenAI(tts.WithAPIKey("key"), tts.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAI() error: %v", err)
	}
	defer synth.Close()

	result, err := synth.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if string(result.Audio) != "fake-mp3-bytes" {
		t.Errorf("unexpected audio %q", result.Audio)
	}
	if result.ContentType != tts.ContentTypeMP3 {
		t.Errorf("unexpected content type %q", result.ContentType)
	}
	if result.CharCount != 5 {
		t.Errorf("expected 5 chars, got %d", result.CharCount)
	}
}

func TestOpenAISynthesizeRetriesOnRateLimit(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("audio-after-retry"))
	}))
	defer server.Close()

	synth, err := tts.NewOpenAI(
		tts.WithAPIKey("key"),
		tts.WithBaseURL(server.URL),
		tts.WithRetry(2, 0),
	)
	if err != nil {
		t.Fatalf("NewOpenAI() error: %v", err)
	}
	defer synth.Close()

	result, err := synth.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if string(result.Audio) != "audio-after-retry" {
		t.Errorf("unexpected audio %q", result.Audio)
	}
	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}
}

func TestOpenAISynthesizeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	}))
	defer server.Close()

	synth, err := tts.NewOpenAI(tts.WithAPIKey("bad"), tts.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAI() error: %v", err)
	}
	defer synth.Close()

	_, err = synth.Synthesize(context.Background(), "hello")

	var apiErr *tts.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid key" {
		t.Errorf("expected parsed message, got %q", apiErr.Message)
	}
	if apiErr.IsRetryable() {
		t.Error("401 should not be retryable")
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text-to-speech/voice-123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("output_format") != "mp3_44100_128" {
			t.Errorf("unexpected output format %q", r.URL.Query().Get("output_format"))
		}
		if r.Header.Get("xi-api-key") != "el-key" {
			t.Errorf("missing xi-api-key header")
		}
		w.Write([]byte("el-mp3-bytes"))
	}))
	defer server.Close()

	synth, err := tts.NewElevenLabs(
		tts.WithAPIKey("el-key"),
		tts.WithVoice("voice-123"),
		tts.WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("NewElevenLabs() error: %v", err)
	}
	defer synth.Close()

	result, err := synth.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if string(result.Audio) != "el-mp3-bytes" {
		t.Errorf("unexpected audio %q", result.Audio)
	}
}

func TestChainFallsBack(t *testing.T) {
	failing := tts.MockError(errors.New("primary down"))
	working := tts.NewMock()

	chain, err := tts.NewChain(failing, working)
	if err != nil {
		t.Fatalf("NewChain() error: %v", err)
	}

	result, err := chain.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if len(result.Audio) == 0 {
		t.Error("expected audio from fallback provider")
	}
	if working.CallCount() != 1 {
		t.Errorf("fallback should have been invoked once, got %d", working.CallCount())
	}
}

func TestChainAllFail(t *testing.T) {
	chain, err := tts.NewChain(
		tts.MockError(errors.New("one")),
		tts.MockError(errors.New("two")),
	)
	if err != nil {
		t.Fatalf("NewChain() error: %v", err)
	}

	_, err = chain.Synthesize(context.Background(), "hello")

	var chainErr *tts.ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected *ChainError, got %v", err)
	}
	if len(chainErr.Errors) != 2 {
		t.Errorf("expected 2 aggregated errors, got %d", len(chainErr.Errors))
	}
}

func TestNewChainRequiresProviders(t *testing.T) {
	_, err := tts.NewChain()
	if !errors.Is(err, tts.ErrNoSynthesizers) {
		t.Errorf("expected ErrNoSynthesizers, got %v", err)
	}
}
