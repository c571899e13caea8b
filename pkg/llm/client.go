package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"scoreahack/pkg/errors"
)

// Provider names accepted in configuration
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// DefaultOpenAIModel is the chat model used when none is configured
const DefaultOpenAIModel = "gpt-3.5-turbo-16k"

var defaultModels = map[string]string{
	ProviderOpenAI: DefaultOpenAIModel,
	ProviderOllama: "llama3",
	ProviderClaude: "claude-3-haiku-20240307",
	ProviderGemini: "gemini-1.5-flash",
}

// Client sends a single user message and returns the text of the reply
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Named is implemented by clients that can report which backend they use
type Named interface {
	Provider() string
	Model() string
}

// ErrEmptyResponse is returned when a provider replies without any text
var ErrEmptyResponse = errors.New(errors.ErrorTypeModel, "model returned no content")

// classify maps a provider error onto the shared error types so retry
// policies and the CLI can reason about it.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case stderrors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case stderrors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	msg := fmt.Sprintf("%s request failed: %v", provider, err)
	if status != 0 && status != http.StatusOK {
		e := errors.FromStatus(status, msg)
		e.Err = err
		return e
	}
	return errors.Wrap(errors.ErrorTypeModel, err, msg)
}
