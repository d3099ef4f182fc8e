package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/khoahotran/resume-builder/internal/application/service"
	"github.com/khoahotran/resume-builder/internal/config"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

type geminiLLMAdapter struct {
	client *genai.Client
	model  string
}

func NewGeminiLLMAdapter(ctx context.Context, cfg config.Config, log logger.Logger) (service.LLMService, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}

	log.Info("Gemini (LLM) Adapter initialized")
	return &geminiLLMAdapter{client: client, model: cfg.Gemini.Model}, nil
}

func (a *geminiLLMAdapter) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}
