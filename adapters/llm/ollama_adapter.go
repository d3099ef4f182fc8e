package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/khoahotran/resume-builder/internal/application/service"
	"github.com/khoahotran/resume-builder/internal/config"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

type ollamaLLMAdapter struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// NewOllamaLLMAdapter talks to Ollama through its OpenAI compatible API.
func NewOllamaLLMAdapter(cfg config.Config, log logger.Logger) (service.LLMService, error) {
	if cfg.Ollama.Host == "" {
		return nil, fmt.Errorf("ollama Host is not configured")
	}

	config := openai.DefaultConfig("dummy-key")
	config.BaseURL = cfg.Ollama.Host

	client := openai.NewClientWithConfig(config)

	log.Info("Ollama Chat (LLM) Adapter initialized")
	return &ollamaLLMAdapter{client: client, model: cfg.Ollama.Model, log: log}, nil
}

func (a *ollamaLLMAdapter) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Stream: false,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("ollama chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ollama returned no chat choices")
	}

	return resp.Choices[0].Message.Content, nil
}
