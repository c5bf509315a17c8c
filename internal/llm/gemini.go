package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"promodraft/internal/config"
)

type GeminiClient struct {
	client    *genai.Client
	modelName string
	cfg       config.Config
	log       *zap.Logger
}

func NewGeminiClient(ctx context.Context, cfg config.Config, log *zap.Logger, opts ...option.ClientOption) (*GeminiClient, error) {
	if err := cfg.Require("LLM_API_KEY", cfg.LLMAPIKey); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	modelName := cfg.LLMModel
	if modelName == "" || strings.HasPrefix(modelName, "llama") {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(cfg.LLMAPIKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client, modelName: modelName, cfg: cfg, log: log}, nil
}

func (c *GeminiClient) Model() string { return c.modelName }

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(float32(c.cfg.LLMTemperature))
	if c.cfg.LLMMaxTokens > 0 {
		model.SetMaxOutputTokens(int32(c.cfg.LLMMaxTokens))
	}
	if strings.TrimSpace(system) != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	reply := StripCodeFence(b.String())
	if reply == "" {
		return "", errors.New("gemini: empty reply")
	}
	c.log.Debug("gemini reply", zap.String("model", c.modelName), zap.Int("chars", len(reply)))
	return reply, nil
}
