package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"scoreahack/pkg/llm"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/models"
	"scoreahack/pkg/retry"
)

// Summarizer asks the model for a four-field structured description
type Summarizer struct {
	gen generator
}

// NewSummarizer creates a summarizer. A nil retry config uses the default policy.
func NewSummarizer(client llm.Client, rc *retry.Config, log logger.Logger) *Summarizer {
	return &Summarizer{gen: newGenerator(client, rc, log, "summarizer")}
}

// Summarize never fails: undecodable output comes back as Raw(text) and an
// exhausted model call as Raw("").
func (s *Summarizer) Summarize(ctx context.Context, description string) models.Parsed[models.StructuredSummary] {
	answer, ok := s.gen.generate(ctx, SummaryPrompt(description))
	if !ok {
		return models.Raw[models.StructuredSummary]("")
	}
	return ParseSummary(answer, s.gen.logger)
}

// summaryFields are the keys a structured summary must carry
var summaryFields = []string{"shortDescription", "thematicFocus", "objectiveApproach", "targetUser"}

// ParseSummary decodes model output into a StructuredSummary. Output that is
// not a JSON object with all four string fields is kept as Raw(answer).
func ParseSummary(answer string, log logger.Logger) models.Parsed[models.StructuredSummary] {
	summary, err := decodeSummary([]byte(stripFence(answer)))
	if err != nil {
		if log != nil {
			log.WithError(err).WarnWithFields("summary is not valid JSON", map[string]interface{}{
				"answer_length": len(answer),
			})
		}
		return models.Raw[models.StructuredSummary](answer)
	}
	return models.Structured(summary)
}

func decodeSummary(data []byte) (models.StructuredSummary, error) {
	var summary models.StructuredSummary

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return summary, err
	}
	for _, key := range summaryFields {
		raw, ok := fields[key]
		if !ok {
			return summary, fmt.Errorf("summary is missing %q", key)
		}
		var s *string
		if err := json.Unmarshal(raw, &s); err != nil || s == nil {
			return summary, fmt.Errorf("summary field %q is not a string", key)
		}
	}

	if err := json.Unmarshal(data, &summary); err != nil {
		return summary, err
	}
	return summary, nil
}
