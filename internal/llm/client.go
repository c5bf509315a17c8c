// Package llm drafts text through a hosted chat-completion model.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"promodraft/internal/config"
	"promodraft/internal/fetch"
	"promodraft/internal/util"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completer is anything that turns a system and user prompt into a reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Model() string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type payload struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type apiResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to an OpenAI-compatible /chat/completions endpoint (Groq,
// OpenAI, a local gateway).
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	http        *fetch.Client
	log         *zap.Logger
}

func NewClient(cfg config.Config, http *fetch.Client, log *zap.Logger) (*Client, error) {
	if err := cfg.Require("LLM_API_KEY", cfg.LLMAPIKey); err != nil {
		return nil, err
	}
	if err := cfg.Require("LLM_ENDPOINT", cfg.LLMEndpoint); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		endpoint:    cfg.LLMEndpoint,
		apiKey:      cfg.LLMAPIKey,
		model:       cfg.LLMModel,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxTokens,
		http:        http,
		log:         log,
	}, nil
}

func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(payload{
		Model: c.model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal payload: %w", err)
	}

	c.log.Debug("llm request", zap.String("endpoint", c.endpoint), zap.String("model", c.model), zap.Int("bytes", len(body)))
	respBody, err := c.http.Post(ctx, c.endpoint, map[string]string{
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"Authorization": "Bearer " + c.apiKey,
	}, body)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}

	var resp apiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("llm: unmarshal response: %w", err)
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return "", fmt.Errorf("llm: api error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty response (no choices)")
	}

	reply := StripCodeFence(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("llm: empty reply")
	}
	c.log.Debug("llm reply", zap.Int("chars", len(reply)), zap.String("preview", util.Truncate(reply, 120)))
	return reply, nil
}

// StripCodeFence removes a ``` wrapper around the whole reply.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
