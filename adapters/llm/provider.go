package llm

import (
	"context"
	"fmt"

	"github.com/khoahotran/resume-builder/internal/application/service"
	"github.com/khoahotran/resume-builder/internal/config"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

// New returns nil, nil when text generation is switched off.
func New(ctx context.Context, cfg config.Config, log logger.Logger) (service.LLMService, error) {
	switch cfg.LLM.Provider {
	case config.LLMOllama:
		return NewOllamaLLMAdapter(cfg, log)
	case config.LLMGemini:
		return NewGeminiLLMAdapter(ctx, cfg, log)
	case config.LLMNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
}
