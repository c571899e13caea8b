package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"scoreahack/pkg/llm"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/models"
	"scoreahack/pkg/retry"
)

// Section keys in the model's comparison object
const (
	keyThematicFocus     = "thematicFocus"
	keyObjectiveApproach = "objectiveApproach"
	keyTargetUser        = "targetUser"
	keyOverallScore      = "overallScore"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// SimilarityScorer compares two project descriptions
type SimilarityScorer struct {
	gen generator
}

// NewSimilarityScorer creates a scorer. A nil retry config uses the default policy.
func NewSimilarityScorer(client llm.Client, rc *retry.Config, log logger.Logger) *SimilarityScorer {
	return &SimilarityScorer{gen: newGenerator(client, rc, log, "similarity")}
}

// Score never fails: undecodable output is Raw(text), exhaustion Raw("").
func (s *SimilarityScorer) Score(ctx context.Context, source, candidate string) models.Parsed[models.SimilarityResult] {
	answer, ok := s.gen.generate(ctx, SimilarityPrompt(source, candidate))
	if !ok {
		return models.Raw[models.SimilarityResult]("")
	}
	return ParseSimilarity(answer, s.gen.logger)
}

// ParseSimilarity decodes a comparison object. Scores may be numbers or
// numeric strings; anything else counts as 0. The overall score is always
// the truncated mean of the three dimensions.
func ParseSimilarity(answer string, log logger.Logger) models.Parsed[models.SimilarityResult] {
	result, err := decodeSimilarity([]byte(stripFence(answer)))
	if err != nil {
		if log != nil {
			log.WithError(err).WarnWithFields("similarity is not valid JSON", map[string]interface{}{
				"answer_length": len(answer),
			})
		}
		return models.Raw[models.SimilarityResult](answer)
	}
	return models.Structured(result)
}

type rawSection struct {
	Score         json.RawMessage `json:"similarityScore"`
	Justification json.RawMessage `json:"scoreJustification"`
}

func decodeSimilarity(data []byte) (models.SimilarityResult, error) {
	var result models.SimilarityResult

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return result, err
	}
	if sections == nil {
		return result, fmt.Errorf("similarity output is null")
	}

	parsed := make(map[string]models.SimilaritySection, len(sections))
	for key, raw := range sections {
		section, err := decodeSection(raw)
		if err != nil {
			return result, fmt.Errorf("section %q: %w", key, err)
		}
		parsed[key] = section
	}

	result.ThematicFocus = parsed[keyThematicFocus]
	result.ObjectiveApproach = parsed[keyObjectiveApproach]
	result.TargetUser = parsed[keyTargetUser]

	mean := (result.ThematicFocus.Score + result.ObjectiveApproach.Score + result.TargetUser.Score) / 3
	result.Overall = models.SimilaritySection{
		Score:         math.Trunc(mean),
		Justification: parsed[keyOverallScore].Justification,
	}
	return result, nil
}

func decodeSection(raw json.RawMessage) (models.SimilaritySection, error) {
	var rs rawSection
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return models.SimilaritySection{}, fmt.Errorf("section is null")
	}
	// a bare value carries no score or justification
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.SimilaritySection{}, nil
	}
	if err := json.Unmarshal(raw, &rs); err != nil {
		return models.SimilaritySection{}, err
	}

	section := models.SimilaritySection{Score: coerceScore(rs.Score)}
	var justification string
	if json.Unmarshal(rs.Justification, &justification) == nil {
		section.Justification = justification
	}
	return section, nil
}

// coerceScore reads a JSON number as is and a string by its leading numeric
// prefix. Non-finite and unparseable values are 0.
func coerceScore(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return finite(n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	return ParseLeadingFloat(s)
}

// ParseLeadingFloat parses the longest numeric prefix of s after leading
// whitespace, so "7/10" is 7 and "about 7" is 0.
func ParseLeadingFloat(s string) float64 {
	prefix := leadingNumber.FindString(strings.TrimLeft(s, " \t\n\r\f\v"))
	if prefix == "" {
		return 0
	}
	n, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0
	}
	return finite(n)
}

func finite(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
