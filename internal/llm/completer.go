package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"promodraft/internal/config"
	"promodraft/internal/fetch"
)

// NewCompleter picks the provider named by LLM_PROVIDER.
func NewCompleter(ctx context.Context, cfg config.Config, http *fetch.Client, log *zap.Logger) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "", "openai", "groq":
		return NewClient(cfg, http, log)
	case "gemini":
		return NewGeminiClient(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER: %s", cfg.LLMProvider)
	}
}
