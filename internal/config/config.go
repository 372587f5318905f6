// Package config holds process configuration for voicebridge.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLM provider identifiers.
const (
	ProviderTogether = "together"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
)

// DefaultTogetherBaseURL is Together's OpenAI-compatible endpoint.
const DefaultTogetherBaseURL = "https://api.together.xyz/v1"

// Config holds all configuration values.
type Config struct {
	// Twilio
	TwilioAccountSID  string `yaml:"twilio_account_sid"`
	TwilioAuthToken   string `yaml:"twilio_auth_token"`
	TwilioPhoneNumber string `yaml:"twilio_phone_number"`
	TwilioBaseURL     string `yaml:"twilio_base_url"`

	// Inference
	LLMProvider string `yaml:"llm_provider"`
	LLMAPIKey   string `yaml:"llm_api_key"`
	LLMModel    string `yaml:"llm_model"`
	LLMBaseURL  string `yaml:"llm_base_url"`
	OllamaHost  string `yaml:"ollama_host"`

	// Realtime media bridge
	RealtimeAPIKey string `yaml:"realtime_api_key"`
	RealtimeModel  string `yaml:"realtime_model"`
	RealtimeVoice  string `yaml:"realtime_voice"`

	// HTTP
	Port          string `yaml:"port"`
	PublicBaseURL string `yaml:"public_base_url"`

	// Prompt
	PromptFile string `yaml:"prompt_file"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored first, matching how the service is run in development.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		TwilioBaseURL:     getEnv("TWILIO_BASE_URL", "https://api.twilio.com/2010-04-01"),

		LLMProvider: getEnv("LLM_PROVIDER", ProviderTogether),
		LLMAPIKey:   firstEnv("LLM_API_KEY", "TOGETHER_API_KEY", "OPENAI_API_KEY"),
		LLMModel:    getEnv("LLM_MODEL", "meta-llama/Llama-3-70b-chat-hf"),
		LLMBaseURL:  os.Getenv("LLM_BASE_URL"),
		OllamaHost:  getEnv("OLLAMA_HOST", "http://localhost:11434"),

		RealtimeAPIKey: firstEnv("REALTIME_API_KEY", "OPENAI_API_KEY"),
		RealtimeModel:  getEnv("REALTIME_MODEL", "gpt-4o-realtime-preview-2024-10-01"),
		RealtimeVoice:  getEnv("REALTIME_VOICE", "echo"),

		Port:          getEnv("PORT", "8000"),
		PublicBaseURL: firstEnv("PUBLIC_BASE_URL", "NGROK_URL"),

		PromptFile: os.Getenv("VOICEBRIDGE_PROMPT_FILE"),

		LogFile:  getEnv("VOICEBRIDGE_LOG_FILE", "/tmp/voicebridge.log"),
		LogLevel: parseLogLevel(getEnv("VOICEBRIDGE_LOG_LEVEL", "INFO")),
	}
}

// LoadFile layers environment configuration on top of a YAML config file:
// the file supplies values, any environment variable that is set wins.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg := Load()
	overlay(&cfg.TwilioAccountSID, fileCfg.TwilioAccountSID, "TWILIO_ACCOUNT_SID")
	overlay(&cfg.TwilioAuthToken, fileCfg.TwilioAuthToken, "TWILIO_AUTH_TOKEN")
	overlay(&cfg.TwilioPhoneNumber, fileCfg.TwilioPhoneNumber, "TWILIO_PHONE_NUMBER")
	overlay(&cfg.TwilioBaseURL, fileCfg.TwilioBaseURL, "TWILIO_BASE_URL")
	overlay(&cfg.LLMProvider, fileCfg.LLMProvider, "LLM_PROVIDER")
	overlay(&cfg.LLMAPIKey, fileCfg.LLMAPIKey, "LLM_API_KEY")
	overlay(&cfg.LLMModel, fileCfg.LLMModel, "LLM_MODEL")
	overlay(&cfg.LLMBaseURL, fileCfg.LLMBaseURL, "LLM_BASE_URL")
	overlay(&cfg.OllamaHost, fileCfg.OllamaHost, "OLLAMA_HOST")
	overlay(&cfg.RealtimeAPIKey, fileCfg.RealtimeAPIKey, "REALTIME_API_KEY")
	overlay(&cfg.RealtimeModel, fileCfg.RealtimeModel, "REALTIME_MODEL")
	overlay(&cfg.RealtimeVoice, fileCfg.RealtimeVoice, "REALTIME_VOICE")
	overlay(&cfg.Port, fileCfg.Port, "PORT")
	overlay(&cfg.PublicBaseURL, fileCfg.PublicBaseURL, "PUBLIC_BASE_URL")
	overlay(&cfg.PromptFile, fileCfg.PromptFile, "VOICEBRIDGE_PROMPT_FILE")
	overlay(&cfg.LogFile, fileCfg.LogFile, "VOICEBRIDGE_LOG_FILE")
	return cfg, nil
}

// Validate checks that required credentials are present. The process must
// not serve traffic without them.
func Validate(cfg Config) error {
	var missing []string

	if cfg.TwilioAccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if cfg.TwilioAuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if cfg.TwilioPhoneNumber == "" {
		missing = append(missing, "TWILIO_PHONE_NUMBER")
	}
	if cfg.LLMProvider != ProviderOllama && cfg.LLMAPIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}

	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

// overlay sets dst from the file value unless the corresponding environment
// variable was explicitly set.
func overlay(dst *string, fileVal, envKey string) {
	if fileVal == "" {
		return
	}
	if _, ok := os.LookupEnv(envKey); ok {
		return
	}
	*dst = fileVal
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// firstEnv returns the first non-empty value among the given keys.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
