package pipeline

import (
	"context"

	"scoreahack/pkg/analysis"
	"scoreahack/pkg/config"
	"scoreahack/pkg/devpost"
	"scoreahack/pkg/llm"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/ratelimit"
	"scoreahack/pkg/retry"
)

// Service bundles an Analyzer with the clients it was built from, for
// callers that also expose fetch and search directly.
type Service struct {
	*Analyzer
	Devpost  *devpost.Client
	Model    *llm.Limited
	Keywords *analysis.KeywordExtractor
}

// Close releases the model client
func (s *Service) Close() error {
	if s.Model == nil {
		return nil
	}
	return s.Model.Close()
}

// NewFromConfig wires the Devpost client, the rate-limited model client and
// the analysis stages from configuration.
func NewFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	dp := devpost.NewClient(cfg.Devpost, cfg.Search, log)

	model, err := llm.New(ctx, cfg.LLM, ratelimit.New(cfg.RateLimit), log)
	if err != nil {
		return nil, err
	}

	rc := retry.FromConfig(cfg.Retry, log)
	keywords := analysis.NewKeywordExtractor(model, rc, log)
	analyzer := New(Deps{
		Source:     dp,
		Summarizer: analysis.NewSummarizer(model, rc, log),
		Keywords:   keywords,
		Scorer:     analysis.NewSimilarityScorer(model, rc, log),
	}, cfg.Analysis, log)

	return &Service{Analyzer: analyzer, Devpost: dp, Model: model, Keywords: keywords}, nil
}
