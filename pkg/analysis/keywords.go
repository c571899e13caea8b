package analysis

import (
	"context"
	"regexp"
	"strings"

	"scoreahack/pkg/llm"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/retry"
)

// NoKeywords is the model's reply when no keyword string fits
const NoKeywords = "None"

var keywordTrim = regexp.MustCompile(`^[\s"']+|[\s"']+$`)

// KeywordExtractor asks the model for a short search string
type KeywordExtractor struct {
	gen generator
}

// NewKeywordExtractor creates an extractor. A nil retry config uses the default policy.
func NewKeywordExtractor(client llm.Client, rc *retry.Config, log logger.Logger) *KeywordExtractor {
	return &KeywordExtractor{gen: newGenerator(client, rc, log, "keywords")}
}

// Extract returns the keyword tokens, or an empty slice when the model
// call was exhausted.
func (k *KeywordExtractor) Extract(ctx context.Context, description string) []string {
	answer, ok := k.gen.generate(ctx, KeywordPrompt(description))
	if !ok {
		return []string{}
	}
	keywords := ParseKeywords(answer)
	k.gen.logger.DebugWithFields("keywords extracted", map[string]interface{}{"keywords": keywords})
	return keywords
}

// ParseKeywords trims quotes and whitespace from both ends and splits on
// single spaces. Empty tokens are dropped.
func ParseKeywords(answer string) []string {
	cleaned := keywordTrim.ReplaceAllString(answer, "")
	keywords := []string{}
	for _, tok := range strings.Split(cleaned, " ") {
		if tok != "" {
			keywords = append(keywords, tok)
		}
	}
	return keywords
}

// IsNone reports whether keywords carry no search signal. The sentinel is
// matched case-insensitively, with or without a trailing period.
func IsNone(keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	return len(keywords) == 1 && strings.EqualFold(strings.TrimRight(keywords[0], "."), NoKeywords)
}
