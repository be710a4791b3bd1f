// Package llm wraps the OpenAI chat-completion API behind the small surface
// the summarizer needs.
package llm

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"video_digest/internal/domain"
)

// CompletionRequest is one chat-completion call: system and user content,
// temperature, and output budget.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Client generates text for a prompt under constraints.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// OpenAI implements Client over the OpenAI chat completions endpoint.
type OpenAI struct {
	client  *openai.Client
	timeout time.Duration
}

func NewOpenAI(cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(clientCfg),
		timeout: cfg.Timeout,
	}
}

// Complete runs one chat completion bounded by the configured per-attempt
// deadline. Provider failures are classified so the retry wrapper can decide
// on re-attempts.
func (o *OpenAI) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", domain.E(domain.KindGenerationFailed, "model returned no usable output")
	}

	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return domain.Wrap(domain.KindRateLimited, "model provider throttled", err).WithStatus(apiErr.HTTPStatusCode)
		case apiErr.HTTPStatusCode >= 500:
			return domain.Wrap(domain.KindUnavailable, "model provider unavailable", err).WithStatus(apiErr.HTTPStatusCode)
		default:
			return domain.Wrap(domain.KindGenerationFailed, "model call rejected", err).WithStatus(apiErr.HTTPStatusCode)
		}
	}
	return &domain.Error{
		Kind:    domain.KindUnavailable,
		Code:    "conn_failed",
		Message: "model provider unreachable",
		Err:     err,
	}
}
