package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/outlawlabs/outlaw/pkg/utils"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama-3.3-70b-versatile"
)

// GroqClient calls Groq through its OpenAI-compatible chat completions
// endpoint. Unlike Gemini, Groq takes separate system and user role messages,
// so the context block travels as the system message.
type GroqClient struct {
	cfg     *utils.Config
	model   string
	baseURL string
}

// NewGroqClient creates a Groq client. The API key is read from config at
// call time, so a missing credential surfaces per call rather than at startup.
func NewGroqClient(cfg *utils.Config) *GroqClient {
	return &GroqClient{
		cfg:     cfg,
		model:   cfg.GetWithDefault("GROQ_MODEL", defaultGroqModel),
		baseURL: cfg.GetWithDefault("GROQ_BASE_URL", defaultGroqBaseURL),
	}
}

// Name returns the provider's short name
func (c *GroqClient) Name() string {
	return "groq"
}

// Chat sends one generation request to Groq
func (c *GroqClient) Chat(ctx context.Context, prompt, contextBlock string) (string, error) {
	apiKey := c.cfg.Get("GROQ_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GROQ_API_KEY not set: %w", ErrModelUnavailable)
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(c.baseURL),
	)

	messages := []openai.ChatCompletionMessageParamUnion{}
	if contextBlock != "" {
		messages = append(messages, openai.SystemMessage(contextBlock))
	}
	messages = append(messages, openai.UserMessage(prompt))

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("groq request failed: %v: %w", err, ErrModelUnavailable)
	}

	// No choices is an empty success, the caller supplies its own no-content
	// fallback
	if len(completion.Choices) == 0 {
		return "", nil
	}

	return completion.Choices[0].Message.Content, nil
}
