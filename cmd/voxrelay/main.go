// voxrelay: voice chat relay server
// Accepts WebSocket audio from browser clients and replies with
// synthesized mentor speech via STT, chat, and TTS providers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/voxrelay/voxrelay/internal/config"
	"github.com/voxrelay/voxrelay/internal/log"
	"github.com/voxrelay/voxrelay/pkg/agent"
	"github.com/voxrelay/voxrelay/pkg/api"
	"github.com/voxrelay/voxrelay/pkg/chat"
	"github.com/voxrelay/voxrelay/pkg/pipeline"
	"github.com/voxrelay/voxrelay/pkg/relay"
	"github.com/voxrelay/voxrelay/pkg/stt"
	"github.com/voxrelay/voxrelay/pkg/tts"
)

var version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log.Init(cfg.LogLevel)
	log.Info("starting voxrelay", "version", version, "port", cfg.Port)

	transcriber, err := buildTranscriber(cfg)
	if err != nil {
		log.Error("speech-to-text setup failed", "error", err)
		os.Exit(1)
	}

	responder, err := buildResponder(cfg)
	if err != nil {
		log.Error("chat setup failed", "error", err)
		os.Exit(1)
	}

	synthesizer, err := buildSynthesizer(cfg)
	if err != nil {
		log.Error("text-to-speech setup failed", "error", err)
		os.Exit(1)
	}
	defer synthesizer.Close()

	voicePipeline := pipeline.New(transcriber, responder, synthesizer)
	agents := agent.NewManager(responder)

	app := fiber.New(fiber.Config{
		AppName:               "voxrelay",
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if cfg.LogLevel == "debug" {
		app.Use(logger.New())
	}

	hub := relay.NewHub(voicePipeline,
		relay.WithProcessTimeout(cfg.ProcessTimeout),
		relay.WithMaxAudioBytes(int(cfg.MaxAudioBytes)),
	)
	hub.RegisterRoutes(app)

	server := api.NewServer(transcriber, responder, synthesizer, agents)
	server.RegisterRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": version,
			"stats":   hub.GetStats(),
			"agents":  agents.Count(),
		})
	})

	// Browser client assets
	app.Static("/", "./web")

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("listening",
			"addr", addr,
			"websocket", fmt.Sprintf("ws://localhost:%d/ws/audio", cfg.Port),
			"health", fmt.Sprintf("http://localhost:%d/health", cfg.Port),
		)
		if err := app.Listen(addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

// buildTranscriber creates the speech-to-text stage.
func buildTranscriber(cfg *config.Config) (stt.Transcriber, error) {
	opts := []stt.OpenAIOption{stt.WithModel(cfg.STTModel)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, stt.WithBaseURL(cfg.OpenAIBaseURL))
	}
	transcriber, err := stt.NewOpenAI(cfg.OpenAIKey, opts...)
	if err != nil {
		return nil, err
	}
	return transcriber, nil
}

// buildResponder creates the chat stage for the configured provider.
func buildResponder(cfg *config.Config) (chat.Responder, error) {
	switch cfg.ChatProvider {
	case "gemini":
		responder, err := chat.NewGemini(context.Background(), cfg.GoogleAPIKey,
			chat.WithGeminiModel(cfg.ChatModel),
		)
		if err != nil {
			return nil, err
		}
		return responder, nil
	default:
		opts := []chat.OpenAIOption{chat.WithOpenAIModel(cfg.ChatModel)}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, chat.WithOpenAIBaseURL(cfg.OpenAIBaseURL))
		}
		responder, err := chat.NewOpenAI(cfg.OpenAIKey, opts...)
		if err != nil {
			return nil, err
		}
		return responder, nil
	}
}

// buildSynthesizer creates the text-to-speech stage. With ElevenLabs
// credentials it becomes the primary voice with OpenAI as fallback.
func buildSynthesizer(cfg *config.Config) (tts.Synthesizer, error) {
	opts := []tts.Option{
		tts.WithAPIKey(cfg.OpenAIKey),
		tts.WithModel(cfg.TTSModel),
		tts.WithVoice(cfg.TTSVoice),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, tts.WithBaseURL(cfg.OpenAIBaseURL))
	}

	openai, err := tts.NewOpenAI(opts...)
	if err != nil {
		return nil, err
	}

	if cfg.ElevenLabsKey == "" {
		return openai, nil
	}

	eleven, err := tts.NewElevenLabs(
		tts.WithAPIKey(cfg.ElevenLabsKey),
		tts.WithVoice(cfg.ElevenLabsVoiceID),
	)
	if err != nil {
		return nil, err
	}

	chain, err := tts.NewChain(eleven, openai)
	if err != nil {
		return nil, err
	}
	return chain, nil
}
