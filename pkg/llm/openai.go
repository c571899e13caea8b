package llm

import (
	"context"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to the OpenAI chat completions API or any server that
// implements it, such as Ollama's /v1 endpoint.
type OpenAIClient struct {
	client      *openai.Client
	provider    string
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIClient creates a chat client. An empty baseURL targets api.openai.com.
func NewOpenAIClient(apiKey, model, baseURL string, temperature float32, maxTokens int) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		provider:    ProviderOpenAI,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// NewOllamaClient points an OpenAI client at a local Ollama server
func NewOllamaClient(model, baseURL string, temperature float32, maxTokens int) *OpenAIClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}
	if model == "" {
		model = defaultModels[ProviderOllama]
	}
	// Ollama ignores the key but the client requires one.
	c := NewOpenAIClient("ollama", model, baseURL, temperature, maxTokens)
	c.provider = ProviderOllama
	return c
}

func (c *OpenAIClient) Provider() string { return c.provider }
func (c *OpenAIClient) Model() string    { return c.model }

// Generate sends prompt as a single user message
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := c.temperature
	if temperature == 0 {
		// A zero value is dropped by the request encoder and the server default applies.
		temperature = math.SmallestNonzeroFloat32
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
