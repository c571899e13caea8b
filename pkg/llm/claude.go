package llm

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
	"scoreahack/pkg/errors"
)

// ClaudeClient talks to the Anthropic messages API
type ClaudeClient struct {
	client      *anthropic.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewClaudeClient creates a messages client
func NewClaudeClient(apiKey, model, baseURL string, temperature float32, maxTokens int) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	if model == "" {
		model = defaultModels[ProviderClaude]
	}
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &ClaudeClient{
		client:      anthropic.NewClient(apiKey, opts...),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (c *ClaudeClient) Provider() string { return ProviderClaude }
func (c *ClaudeClient) Model() string    { return c.model }

// Generate sends prompt as a single user message
func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := c.temperature
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
		MaxTokens:   c.maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		var apiErr *anthropic.APIError
		if stderrors.As(err, &apiErr) && apiErr.IsRateLimitErr() {
			return "", errors.Wrap(errors.ErrorTypeRateLimit, err, fmt.Sprintf("claude rate limited: %v", err))
		}
		return "", classify(ProviderClaude, err)
	}

	for _, content := range resp.Content {
		if content.Text != nil && *content.Text != "" {
			return *content.Text, nil
		}
	}
	return "", ErrEmptyResponse
}
