package llm

import (
	"context"
	"fmt"
	"strings"

	"scoreahack/pkg/config"
	"scoreahack/pkg/errors"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/ratelimit"
)

// NormalizeProvider folds provider aliases onto the canonical names
func NormalizeProvider(name string) string {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case "", ProviderOpenAI:
		return ProviderOpenAI
	case "anthropic":
		return ProviderClaude
	case "google":
		return ProviderGemini
	default:
		return p
	}
}

// New builds the configured provider client, wrapped with the limiter.
func New(ctx context.Context, cfg config.LLMConfig, limiter ratelimit.Limiter, log logger.Logger) (*Limited, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	provider := NormalizeProvider(cfg.Provider)

	model := cfg.Model
	if provider != ProviderOpenAI && model == DefaultOpenAIModel {
		model = ""
	}
	if model == "" {
		model = defaultModels[provider]
	}

	if cfg.APIKey == "" && provider != ProviderOllama {
		return nil, errors.New(errors.ErrorTypeAuth,
			fmt.Sprintf("no API key configured for %s; run `scoreahack auth login` or set SCOREAHACK_LLM_API_KEY", provider))
	}

	var client Client
	switch provider {
	case ProviderOpenAI:
		client = NewOpenAIClient(cfg.APIKey, model, cfg.BaseURL, cfg.Temperature, cfg.MaxTokens)
	case ProviderOllama:
		client = NewOllamaClient(model, cfg.BaseURL, cfg.Temperature, cfg.MaxTokens)
	case ProviderClaude:
		client = NewClaudeClient(cfg.APIKey, model, cfg.BaseURL, cfg.Temperature, cfg.MaxTokens)
	case ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.APIKey, model, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		client = c
	default:
		return nil, errors.New(errors.ErrorTypeValidation, fmt.Sprintf("unsupported llm provider: %s", cfg.Provider))
	}

	log = log.WithFields(map[string]interface{}{
		"component": "llm",
		"provider":  provider,
		"model":     model,
	})
	log.Debug("model client ready")
	return NewLimited(client, limiter, cfg.Timeout, log), nil
}
