package analysis

import (
	"context"
	"strings"

	"scoreahack/pkg/llm"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/retry"
)

// generator sends prompts through the soft retry wrapper. An exhausted call
// yields "" and false; the failure has already been logged.
type generator struct {
	client llm.Client
	retry  *retry.Config
	logger logger.Logger
}

func newGenerator(client llm.Client, rc *retry.Config, log logger.Logger, component string) generator {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", component)
	if rc == nil {
		rc = retry.DefaultConfig()
	}
	// Retries log under the caller's component.
	cfg := *rc
	cfg.Logger = log
	return generator{client: client, retry: &cfg, logger: log}
}

func (g generator) generate(ctx context.Context, prompt string) (string, bool) {
	out := retry.Soft(ctx, func(ctx context.Context) (string, error) {
		return g.client.Generate(ctx, prompt)
	}, g.retry)
	return out.Get()
}

// stripFence removes a surrounding markdown code fence, if any.
func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		// drop the info string, e.g. ```json
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
