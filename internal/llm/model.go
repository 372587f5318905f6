// Package llm provides the chat-completion adapter using langchaingo.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphaelgruber/voicebridge/internal/config"
	"github.com/raphaelgruber/voicebridge/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Fixed sampling parameters for voice replies. Replies are spoken aloud, so
// they are kept short and low-variance.
const (
	replyMaxTokens         = 150
	replyTemperature       = 0.3
	replyTopP              = 0.7
	replyTopK              = 50
	replyRepetitionPenalty = 1.0
)

// Responder produces one assistant reply for a full conversation transcript.
type Responder interface {
	Reply(ctx context.Context, transcript []models.Message) (string, error)
}

// Model wraps a langchaingo chat model for transcript completion.
type Model struct {
	llm       llms.Model
	modelName string
}

var _ Responder = (*Model)(nil)

// NewModel creates a chat model based on configuration. Together is the
// default provider, reached through its OpenAI-compatible endpoint.
func NewModel(cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderTogether:
		if cfg.LLMAPIKey == "" {
			return nil, fmt.Errorf("Together API key required")
		}
		baseURL := cfg.LLMBaseURL
		if baseURL == "" {
			baseURL = config.DefaultTogetherBaseURL
		}
		model, err = openai.New(
			openai.WithToken(cfg.LLMAPIKey),
			openai.WithModel(cfg.LLMModel),
			openai.WithBaseURL(baseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("create together model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.LLMAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		opts := []openai.Option{
			openai.WithToken(cfg.LLMAPIKey),
			openai.WithModel(cfg.LLMModel),
		}
		if cfg.LLMBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLMBaseURL))
		}
		model, err = openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// Reply sends the full transcript and returns the first choice, trimmed.
// Errors are classified (auth, malformed response) so callers can log the
// distinction; the user-facing fallback is the caller's responsibility.
func (m *Model) Reply(ctx context.Context, transcript []models.Message) (string, error) {
	response, err := m.llm.GenerateContent(ctx, toMessageContent(transcript),
		llms.WithMaxTokens(replyMaxTokens),
		llms.WithTemperature(replyTemperature),
		llms.WithTopP(replyTopP),
		llms.WithTopK(replyTopK),
		llms.WithRepetitionPenalty(replyRepetitionPenalty),
	)
	if err != nil {
		return "", classify(fmt.Errorf("generate reply: %w", err))
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	reply := strings.TrimSpace(response.Choices[0].Content)
	if reply == "" {
		return "", fmt.Errorf("%w: empty choice content", ErrMalformedResponse)
	}
	return reply, nil
}

// Model returns the configured model name.
func (m *Model) Model() string {
	return m.modelName
}

func toMessageContent(transcript []models.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(transcript))
	for _, msg := range transcript {
		var msgType llms.ChatMessageType
		switch msg.Role {
		case models.RoleSystem:
			msgType = llms.ChatMessageTypeSystem
		case models.RoleAssistant:
			msgType = llms.ChatMessageTypeAI
		default:
			msgType = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(msgType, msg.Content))
	}
	return out
}
