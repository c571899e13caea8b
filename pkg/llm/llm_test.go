package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scoreahack/pkg/config"
	"scoreahack/pkg/errors"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/ratelimit"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, got *chatRequest, reply string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  got.Model,
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}, "finish_reason": "stop"},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAIClientGenerate(t *testing.T) {
	var got chatRequest
	server := chatServer(t, &got, "smart fridge camera")

	client := NewOpenAIClient("sk-test", "", server.URL+"/v1", 0, 1000)
	out, err := client.Generate(context.Background(), "describe it")
	require.NoError(t, err)

	assert.Equal(t, "smart fridge camera", out)
	assert.Equal(t, DefaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "describe it", got.Messages[0].Content)
	assert.InDelta(t, 0, got.Temperature, 1e-6)
	assert.Equal(t, 1000, got.MaxTokens)
}

func TestOllamaClientUsesV1(t *testing.T) {
	var got chatRequest
	server := chatServer(t, &got, "ok")

	client := NewOllamaClient("", server.URL+"/", 0, 0)
	assert.Equal(t, ProviderOllama, client.Provider())
	assert.Equal(t, "llama3", client.Model())

	out, err := client.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestOpenAIClientErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantType errors.ErrorType
	}{
		{"rate limited", http.StatusTooManyRequests, errors.ErrorTypeRateLimit},
		{"unauthorised", http.StatusUnauthorized, errors.ErrorTypeAuth},
		{"server error", http.StatusInternalServerError, errors.ErrorTypeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope","type":"test"}}`))
			}))
			defer server.Close()

			client := NewOpenAIClient("sk-test", "m", server.URL+"/v1", 0, 0)
			_, err := client.Generate(context.Background(), "x")
			require.Error(t, err)
			assert.Equal(t, tt.wantType, errors.TypeOf(err))
		})
	}
}

func TestClaudeClientGenerate(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-haiku-20240307",
			"content":[{"type":"text","text":"fridge, camera"}],"stop_reason":"end_turn",
			"usage":{"input_tokens":1,"output_tokens":2}}`))
	}))
	defer server.Close()

	client := NewClaudeClient("key", "", server.URL+"/v1", 0, 0)
	out, err := client.Generate(context.Background(), "keywords please")
	require.NoError(t, err)

	assert.Equal(t, "fridge, camera", out)
	assert.Equal(t, float64(1000), body["max_tokens"])
	assert.Equal(t, float64(0), body["temperature"])
	assert.Len(t, body["messages"], 1)
}

func TestNormalizeProvider(t *testing.T) {
	assert.Equal(t, ProviderOpenAI, NormalizeProvider(""))
	assert.Equal(t, ProviderClaude, NormalizeProvider("Anthropic"))
	assert.Equal(t, ProviderGemini, NormalizeProvider("google"))
	assert.Equal(t, ProviderOllama, NormalizeProvider(" ollama "))
}

func TestNewFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := New(ctx, config.LLMConfig{Provider: "openai"}, nil, logger.NewTestLogger())
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeAuth, errors.TypeOf(err))
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(ctx, config.LLMConfig{Provider: "parrot", APIKey: "k"}, nil, logger.NewTestLogger())
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeValidation, errors.TypeOf(err))
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		c, err := New(ctx, config.LLMConfig{Provider: "ollama", Model: DefaultOpenAIModel}, nil, logger.NewTestLogger())
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, c.Provider())
		assert.Equal(t, "llama3", c.Model())
	})

	t.Run("claude alias", func(t *testing.T) {
		c, err := New(ctx, config.LLMConfig{Provider: "anthropic", APIKey: "k"}, nil, logger.NewTestLogger())
		require.NoError(t, err)
		assert.Equal(t, ProviderClaude, c.Provider())
		assert.Equal(t, defaultModels[ProviderClaude], c.Model())
	})
}

func TestLimitedThrottlesAndLogs(t *testing.T) {
	var calls int32
	mock := NewMockClient(func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "done", nil
	})
	log := logger.NewTestLogger()
	limited := NewLimited(mock, ratelimit.NewTokenBucket(1, time.Hour), 0, log)

	out, err := limited.Generate(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.True(t, log.HasMessage("Model call completed"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Generate(ctx, "second")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLimitedTimeout(t *testing.T) {
	mock := NewMockClient(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	log := logger.NewTestLogger()
	limited := NewLimited(mock, nil, 10*time.Millisecond, log)

	_, err := limited.Generate(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, log.HasMessage("Model call failed"))
	assert.Equal(t, "custom", limited.Provider())
}

func TestMockClientRecordsPrompts(t *testing.T) {
	m := StaticClient("x")
	_, _ = m.Generate(context.Background(), "a")
	_, _ = m.Generate(context.Background(), "b")
	assert.Equal(t, []string{"a", "b"}, m.Prompts())
	assert.Equal(t, 2, m.Calls())
}
