package service

import (
	"context"
)

type LLMService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
