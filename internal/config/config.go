// Package config loads voxrelay configuration from the environment.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the relay server.
const (
	DefaultPort           = 3000
	DefaultBodyLimit      = 50 * 1024 * 1024 // accommodates base64 audio payloads
	DefaultProcessTimeout = 60 * time.Second
)

// Config holds all settings for the relay server and its downstream providers.
type Config struct {
	// Server
	Port      int
	LogLevel  string
	BodyLimit int

	// OpenAI (speech-to-text, chat, speech synthesis)
	OpenAIKey     string
	OpenAIBaseURL string

	// ElevenLabs (optional speech synthesis)
	ElevenLabsKey     string
	ElevenLabsVoiceID string

	// Google (optional Gemini chat backend)
	GoogleAPIKey string

	// Model selection
	ChatProvider string // "openai" or "gemini"
	ChatModel    string
	STTModel     string
	TTSModel     string
	TTSVoice     string

	// Per-utterance limits
	ProcessTimeout time.Duration
	MaxAudioBytes  int64
}

// Load reads configuration from environment variables with defaults applied.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BODY_LIMIT", DefaultBodyLimit)
	v.SetDefault("CHAT_PROVIDER", "openai")
	v.SetDefault("CHAT_MODEL", "gpt-4-turbo-preview")
	v.SetDefault("STT_MODEL", "whisper-1")
	v.SetDefault("TTS_MODEL", "tts-1")
	v.SetDefault("TTS_VOICE", "nova")
	v.SetDefault("PROCESS_TIMEOUT", DefaultProcessTimeout.String())
	v.SetDefault("MAX_AUDIO_BYTES", int64(DefaultBodyLimit))

	timeout, err := time.ParseDuration(v.GetString("PROCESS_TIMEOUT"))
	if err != nil {
		return nil, errors.New("config: PROCESS_TIMEOUT must be a duration (e.g. 60s)")
	}

	cfg := &Config{
		Port:              v.GetInt("PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		BodyLimit:         v.GetInt("BODY_LIMIT"),
		OpenAIKey:         v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:     v.GetString("OPENAI_BASE_URL"),
		ElevenLabsKey:     v.GetString("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: v.GetString("ELEVENLABS_VOICE_ID"),
		GoogleAPIKey:      v.GetString("GOOGLE_API_KEY"),
		ChatProvider:      v.GetString("CHAT_PROVIDER"),
		ChatModel:         v.GetString("CHAT_MODEL"),
		STTModel:          v.GetString("STT_MODEL"),
		TTSModel:          v.GetString("TTS_MODEL"),
		TTSVoice:          v.GetString("TTS_VOICE"),
		ProcessTimeout:    timeout,
		MaxAudioBytes:     v.GetInt64("MAX_AUDIO_BYTES"),
	}

	return cfg, cfg.Validate()
}

// Validate checks that required settings are present and consistent.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("config: PORT must be between 1 and 65535")
	}

	switch c.ChatProvider {
	case "openai":
		if c.OpenAIKey == "" {
			return errors.New("config: OPENAI_API_KEY is required")
		}
	case "gemini":
		if c.GoogleAPIKey == "" {
			return errors.New("config: GOOGLE_API_KEY is required for the gemini chat provider")
		}
		if c.OpenAIKey == "" {
			return errors.New("config: OPENAI_API_KEY is required for transcription and synthesis")
		}
	default:
		return errors.New("config: CHAT_PROVIDER must be \"openai\" or \"gemini\"")
	}

	if c.ProcessTimeout <= 0 {
		return errors.New("config: PROCESS_TIMEOUT must be positive")
	}
	if c.MaxAudioBytes <= 0 {
		return errors.New("config: MAX_AUDIO_BYTES must be positive")
	}

	return nil
}
