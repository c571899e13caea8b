package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scoreahack/pkg/llm"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/retry"
)

func fastRetry(attempts int) *retry.Config {
	return &retry.Config{
		MaxAttempts: attempts,
		Backoff:     &retry.ConstantBackoff{},
		RetryIf:     retry.RetryAll,
	}
}

func failingClient() *llm.MockClient {
	return llm.NewMockClient(func(context.Context, string) (string, error) {
		return "", errors.New("upstream unavailable")
	})
}

func TestSummarize(t *testing.T) {
	client := llm.StaticClient(`{"shortDescription":"A smart fridge camera.","thematicFocus":"Food waste","objectiveApproach":"Track items","targetUser":"Households"}`)
	s := NewSummarizer(client, fastRetry(3), logger.NewTestLogger())

	got := s.Summarize(context.Background(), "fridge description")
	summary, ok := got.Structured()
	require.True(t, ok)
	assert.Equal(t, "A smart fridge camera.", summary.ShortDescription)
	assert.Equal(t, "Households", summary.TargetUser)

	prompts := client.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Project_Description: fridge description")
}

func TestSummarizeMalformed(t *testing.T) {
	log := logger.NewTestLogger()
	s := NewSummarizer(llm.StaticClient("Sure! Here is a summary: it is a fridge."), fastRetry(3), log)

	got := s.Summarize(context.Background(), "d")
	assert.False(t, got.IsStructured())
	assert.Equal(t, "Sure! Here is a summary: it is a fridge.", got.Raw())
	assert.True(t, log.HasMessage("summary is not valid JSON"))
}

func TestSummarizeFenced(t *testing.T) {
	got := ParseSummary("```json\n"+`{"shortDescription":"x","thematicFocus":"t","objectiveApproach":"o","targetUser":"u"}`+"\n```", nil)
	summary, ok := got.Structured()
	require.True(t, ok)
	assert.Equal(t, "x", summary.ShortDescription)
	assert.Equal(t, "u", summary.TargetUser)
}

func TestParseSummaryWrongShape(t *testing.T) {
	for _, answer := range []string{
		`null`,
		`{}`,
		`{"answer":"I cannot summarise this"}`,
		`{"shortDescription":"x","thematicFocus":"t","objectiveApproach":"o"}`,
		`{"shortDescription":"x","thematicFocus":"t","objectiveApproach":"o","targetUser":null}`,
		`{"shortDescription":"x","thematicFocus":["t"],"objectiveApproach":"o","targetUser":"u"}`,
		`["shortDescription"]`,
	} {
		log := logger.NewTestLogger()
		got := ParseSummary(answer, log)
		assert.False(t, got.IsStructured(), answer)
		assert.Equal(t, answer, got.Raw(), answer)
		assert.True(t, log.HasMessage("summary is not valid JSON"), answer)
	}
}

func TestSummarizeExhausted(t *testing.T) {
	client := failingClient()
	log := logger.NewTestLogger()
	s := NewSummarizer(client, fastRetry(4), log)

	got := s.Summarize(context.Background(), "d")
	assert.False(t, got.IsStructured())
	assert.Empty(t, got.Raw())
	assert.Equal(t, 4, client.Calls())
	assert.True(t, log.HasMessage("call failed after retries"))
}

func TestRetryThenSucceed(t *testing.T) {
	calls := 0
	client := llm.NewMockClient(func(context.Context, string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("429")
		}
		return "smart fridge", nil
	})
	k := NewKeywordExtractor(client, fastRetry(20), logger.NewTestLogger())

	assert.Equal(t, []string{"smart", "fridge"}, k.Extract(context.Background(), "d"))
	assert.Equal(t, 3, client.Calls())
}

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []string
	}{
		{"plain", "smart fridge camera", []string{"smart", "fridge", "camera"}},
		{"quoted", "\"smart fridge camera\"\n", []string{"smart", "fridge", "camera"}},
		{"single quotes", "  'food waste'  ", []string{"food", "waste"}},
		{"double space", "food  waste", []string{"food", "waste"}},
		{"none", "None", []string{"None"}},
		{"empty", "  \"\" ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKeywords(tt.answer))
		})
	}
}

func TestIsNone(t *testing.T) {
	assert.True(t, IsNone(nil))
	assert.True(t, IsNone([]string{}))
	assert.False(t, IsNone([]string{"None", "fridge"}))
	assert.False(t, IsNone([]string{"fridge"}))
	assert.False(t, IsNone([]string{"Nonexistent"}))

	for _, answer := range []string{"None", "none", `"NONE"`, "None.", "'none'"} {
		assert.True(t, IsNone(ParseKeywords(answer)), answer)
	}
}

func TestExtractDeterministic(t *testing.T) {
	k := NewKeywordExtractor(llm.StaticClient("smart fridge camera"), fastRetry(1), logger.NewTestLogger())
	first := k.Extract(context.Background(), "same description")
	second := k.Extract(context.Background(), "same description")
	assert.Equal(t, first, second)
}

func TestExtractExhausted(t *testing.T) {
	k := NewKeywordExtractor(failingClient(), fastRetry(2), logger.NewTestLogger())
	got := k.Extract(context.Background(), "d")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestKeywordPrompt(t *testing.T) {
	p := KeywordPrompt("my description")
	assert.True(t, strings.HasSuffix(p, "This is the description of the project: my description"))
	assert.Contains(t, p, `just respond with "None"`)
}

func TestParseSimilarity(t *testing.T) {
	answer := `{
		"thematicFocus": {"similarityScore": 8, "scoreJustification": "both fight food waste"},
		"objectiveApproach": {"similarityScore": "6", "scoreJustification": "camera vs barcode"},
		"targetUser": {"similarityScore": "7/10", "scoreJustification": "households"},
		"overallScore": {"similarityScore": 10, "scoreJustification": "close match"}
	}`

	got := ParseSimilarity(answer, nil)
	result, ok := got.Structured()
	require.True(t, ok)
	assert.Equal(t, 8.0, result.ThematicFocus.Score)
	assert.Equal(t, 6.0, result.ObjectiveApproach.Score)
	assert.Equal(t, 7.0, result.TargetUser.Score)
	assert.Equal(t, 7.0, result.Overall.Score, "overall ignores the model's own value")
	assert.Equal(t, "close match", result.Overall.Justification)
	assert.Equal(t, "households", result.TargetUser.Justification)
}

func TestParseSimilarityOverallTruncates(t *testing.T) {
	tests := []struct {
		name    string
		scores  [3]string
		overall float64
	}{
		{"low", [3]string{"2", "1", "0"}, 1},
		{"fractional mean", [3]string{"9", "9", "8"}, 8},
		{"decimals", [3]string{"2.5", "2.5", "2.9"}, 2},
		{"junk is zero", [3]string{`"abc"`, `null`, `true`}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := `{"thematicFocus":{"similarityScore":` + tt.scores[0] +
				`},"objectiveApproach":{"similarityScore":` + tt.scores[1] +
				`},"targetUser":{"similarityScore":` + tt.scores[2] + `}}`
			result, ok := ParseSimilarity(answer, nil).Structured()
			require.True(t, ok)
			assert.Equal(t, tt.overall, result.Overall.Score)
			assert.Empty(t, result.Overall.Justification)
		})
	}
}

func TestParseSimilarityMissingDimension(t *testing.T) {
	result, ok := ParseSimilarity(`{"thematicFocus":{"similarityScore":9}}`, nil).Structured()
	require.True(t, ok)
	assert.Equal(t, 3.0, result.Overall.Score)
	assert.Zero(t, result.TargetUser.Score)
}

func TestParseSimilarityBareSection(t *testing.T) {
	answer := `{"thematicFocus":"high","objectiveApproach":{"similarityScore":9,"scoreJustification":"same"},` +
		`"targetUser":{"similarityScore":"6"},"overallScore":7}`
	result, ok := ParseSimilarity(answer, nil).Structured()
	require.True(t, ok)
	assert.Zero(t, result.ThematicFocus.Score)
	assert.Empty(t, result.ThematicFocus.Justification)
	assert.Equal(t, 9.0, result.ObjectiveApproach.Score)
	assert.Equal(t, 6.0, result.TargetUser.Score)
	assert.Equal(t, 5.0, result.Overall.Score)
	assert.Empty(t, result.Overall.Justification)
}

func TestParseSimilarityRaw(t *testing.T) {
	for _, answer := range []string{
		"I think they are quite similar.",
		`["not", "an", "object"]`,
		`{"thematicFocus": null}`,
		`null`,
	} {
		got := ParseSimilarity(answer, nil)
		assert.False(t, got.IsStructured(), answer)
		assert.Equal(t, answer, got.Raw())
	}
}

func TestParseLeadingFloat(t *testing.T) {
	tests := map[string]float64{
		"7":         7,
		" 7.5 ":     7.5,
		"8/10":      8,
		"-2":        -2,
		".5":        0.5,
		"1e1":       10,
		"Infinity":  0,
		"NaN":       0,
		"about 7":   0,
		"":          0,
		"3.":        3,
		"1e999":     0,
		"+4 points": 4,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLeadingFloat(in), in)
	}
}

func TestScorerExhausted(t *testing.T) {
	s := NewSimilarityScorer(failingClient(), fastRetry(2), logger.NewTestLogger())
	got := s.Score(context.Background(), "a", "b")
	assert.False(t, got.IsStructured())
	assert.Empty(t, got.Raw())
}

func TestScorerPrompt(t *testing.T) {
	client := llm.StaticClient(`{"thematicFocus":{"similarityScore":1}}`)
	s := NewSimilarityScorer(client, fastRetry(1), nil)

	got := s.Score(context.Background(), "source text", "candidate text")
	assert.True(t, got.IsStructured())
	prompt := client.Prompts()[0]
	assert.Contains(t, prompt, "Project1_Description: source text\nProject2_Description: candidate text")
}
