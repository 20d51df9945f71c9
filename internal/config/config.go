// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSystemPrompt is the persona the assistant answers with when
// SYSTEM_PROMPT is not set.
const DefaultSystemPrompt = `You are Ava, a friendly and helpful AI voice assistant.
You should:
- Be conversational and natural in your responses
- Keep responses concise but informative (1-3 sentences typically)
- Be helpful, empathetic, and engaging
- Remember the context of our conversation
- Ask follow-up questions when appropriate
- Sound like you're having a natural conversation, not reading a manual

Since this is a voice conversation, avoid using formatting like bullet points,
numbered lists, or special characters unless absolutely necessary.`

// Config holds all application configuration.
type Config struct {
	Port          string
	FrontendURL   string
	DBPath        string // empty disables persistence
	DefaultUserID string
	SystemPrompt  string
	MaxTurns      int
	SessionTTL    time.Duration
	Gemini        GeminiConfig
	TTS           TTSConfig
}

// GeminiConfig configures the Gemini collaborator.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// TTSConfig configures speech synthesis and the audio store.
type TTSConfig struct {
	MurfAPIKey     string
	MurfVoiceID    string
	AudioDir       string
	MaxAudioFiles  int
	AudioRetention time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8000"),
		FrontendURL:   getEnv("FRONTEND_URL", ""),
		DBPath:        getEnv("DB_PATH", "./data/ava.db"),
		DefaultUserID: getEnv("DEFAULT_USER_ID", "00000000-0000-0000-0000-000000000001"),
		SystemPrompt:  getEnv("SYSTEM_PROMPT", DefaultSystemPrompt),
		MaxTurns:      getEnvInt("MAX_TURNS", 40),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		TTS: TTSConfig{
			MurfAPIKey:     getEnv("MURF_API_KEY", ""),
			MurfVoiceID:    getEnv("MURF_VOICE_ID", "en-US-terrell"),
			AudioDir:       getEnv("AUDIO_DIR", "./data/audio"),
			MaxAudioFiles:  getEnvInt("MAX_AUDIO_FILES", 50),
			AudioRetention: time.Duration(getEnvInt("AUDIO_RETENTION_HOURS", 24)) * time.Hour,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.MaxTurns < 1 {
		return fmt.Errorf("MAX_TURNS must be >= 1")
	}
	if c.SystemPrompt == "" {
		return fmt.Errorf("SYSTEM_PROMPT cannot be empty")
	}
	if c.TTS.AudioDir == "" {
		return fmt.Errorf("AUDIO_DIR cannot be empty")
	}
	if c.TTS.MaxAudioFiles < 1 {
		return fmt.Errorf("MAX_AUDIO_FILES must be >= 1")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// PersistenceEnabled reports whether a database path is configured.
func (c *Config) PersistenceEnabled() bool {
	return c.DBPath != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
