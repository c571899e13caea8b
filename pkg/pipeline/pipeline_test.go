package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scoreahack/pkg/analysis"
	"scoreahack/pkg/config"
	"scoreahack/pkg/errors"
	"scoreahack/pkg/llm"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/models"
	"scoreahack/pkg/retry"
)

const fridgeDescription = "A smart fridge camera that photographs shelves, labels every item with a vision model and warns households before food expires."

// fakeSource serves projects and a fixed search result
type fakeSource struct {
	projects   map[string]*models.Project
	candidates []models.SearchCandidate

	mu       sync.Mutex
	fetched  []string
	queries  []string
	searches int32
}

func (f *fakeSource) GetProject(_ context.Context, id string) *models.Project {
	f.mu.Lock()
	f.fetched = append(f.fetched, id)
	f.mu.Unlock()
	return f.projects[id]
}

func (f *fakeSource) Search(_ context.Context, query string) []models.SearchCandidate {
	atomic.AddInt32(&f.searches, 1)
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	return f.candidates
}

func (f *fakeSource) fetchedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

func similarityJSON(t, o, u int) string {
	return fmt.Sprintf(`{"thematicFocus":{"similarityScore":%d,"scoreJustification":"t"},`+
		`"objectiveApproach":{"similarityScore":"%d","scoreJustification":"o"},`+
		`"targetUser":{"similarityScore":%d,"scoreJustification":"u"},`+
		`"overallScore":{"similarityScore":10,"scoreJustification":"overall"}}`, t, o, u)
}

// scriptedModel answers by prompt kind; similarity replies are keyed by a
// marker found in the candidate description.
func scriptedModel(summary, keywords string, similarity map[string]string) *llm.MockClient {
	return llm.NewMockClient(func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.HasPrefix(prompt, "Given a text description"):
			return summary, nil
		case strings.HasPrefix(prompt, "[Judge Configuration]"):
			return keywords, nil
		case strings.HasPrefix(prompt, "[INSTRUCTIONS]"):
			candidate := prompt[strings.Index(prompt, "Project2_Description:"):]
			for marker, reply := range similarity {
				if strings.Contains(candidate, marker) {
					return reply, nil
				}
			}
			return "", fmt.Errorf("no scripted similarity")
		}
		return "", fmt.Errorf("unexpected prompt")
	})
}

func newAnalyzer(src *fakeSource, model llm.Client, log logger.Logger) *Analyzer {
	rc := &retry.Config{MaxAttempts: 2, Backoff: &retry.ConstantBackoff{}, RetryIf: retry.RetryAll}
	return New(Deps{
		Source:     src,
		Summarizer: analysis.NewSummarizer(model, rc, log),
		Keywords:   analysis.NewKeywordExtractor(model, rc, log),
		Scorer:     analysis.NewSimilarityScorer(model, rc, log),
	}, config.AnalysisConfig{Concurrency: 4}, log)
}

func fridgeSource() *fakeSource {
	return &fakeSource{
		projects: map[string]*models.Project{
			"fridge": {ID: "fridge", Title: "Fridge", Description: fridgeDescription, Images: []string{"f.png"}},
			"a":      {ID: "a", Title: "Pantry Cam", Description: "MARK-A pantry camera", Images: []string{}},
			"b":      {ID: "b", Title: "Bike Lock", Description: "MARK-B smart bike lock", Images: []string{}},
		},
		candidates: []models.SearchCandidate{{ID: "b"}, {ID: "fridge"}, {ID: "a"}, {ID: ""}},
	}
}

func TestAnalyzeFridgeScenario(t *testing.T) {
	src := fridgeSource()
	model := scriptedModel(
		`{"shortDescription":"Smart fridge","thematicFocus":"food waste","objectiveApproach":"vision","targetUser":"households"}`,
		`"smart fridge camera"`,
		map[string]string{"MARK-A": similarityJSON(8, 6, 7), "MARK-B": similarityJSON(2, 1, 0)},
	)
	log := logger.NewTestLogger()
	a := newAnalyzer(src, model, log)

	result, err := a.Analyze(context.Background(), "fridge")
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "fridge", result.Project.ID)
	assert.Equal(t, fridgeDescription, result.Project.Description)
	assert.Equal(t, []string{"smart", "fridge", "camera"}, result.Keywords)
	assert.Equal(t, []string{"smart fridge camera"}, src.queries)

	summary, ok := result.Summary.Structured()
	require.True(t, ok)
	assert.Equal(t, "Smart fridge", summary.ShortDescription)

	require.Len(t, result.Similar, 2)
	assert.Equal(t, "a", result.Similar[0].Project.ID)
	assert.Equal(t, 7.0, result.Similar[0].OverallScore())
	assert.Equal(t, "b", result.Similar[1].Project.ID)
	assert.Equal(t, 1.0, result.Similar[1].OverallScore())

	assert.Equal(t, models.Originality{Score: 30, Band: models.BandLow}, result.Originality)
	assert.NotContains(t, src.fetchedIDs()[1:], "fridge", "source is never scored against itself")
	assert.False(t, result.AnalyzedAt.IsZero())
}

func TestAnalyzeProjectNotFound(t *testing.T) {
	tests := []struct {
		name    string
		project *models.Project
	}{
		{"missing", nil},
		{"no description", &models.Project{ID: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{projects: map[string]*models.Project{"x": tt.project}}
			model := scriptedModel("{}", "kw", nil)
			a := newAnalyzer(src, model, logger.NewTestLogger())

			result, err := a.Analyze(context.Background(), "x")
			assert.Nil(t, result)
			assert.ErrorIs(t, err, errors.ErrProjectNotFound)
			assert.Zero(t, model.Calls())
			assert.Zero(t, atomic.LoadInt32(&src.searches))
		})
	}
}

func TestAnalyzeDescriptionTooShort(t *testing.T) {
	src := &fakeSource{projects: map[string]*models.Project{
		"x": {ID: "x", Description: "A fridge."},
	}}
	model := scriptedModel("{}", "kw", nil)
	a := newAnalyzer(src, model, logger.NewTestLogger())

	_, err := a.Analyze(context.Background(), "x")
	assert.ErrorIs(t, err, errors.ErrDescriptionTooShort)
	assert.Zero(t, model.Calls())
}

func TestAnalyzeNoneKeywordsSkipsSearch(t *testing.T) {
	for answer, keyword := range map[string]string{"None": "None", `"none"`: "none", "NONE.": "NONE."} {
		t.Run(answer, func(t *testing.T) {
			src := fridgeSource()
			model := scriptedModel("{}", answer, nil)
			a := newAnalyzer(src, model, logger.NewTestLogger())

			result, err := a.Analyze(context.Background(), "fridge")
			require.NoError(t, err)
			assert.Zero(t, atomic.LoadInt32(&src.searches))
			assert.NotNil(t, result.Similar)
			assert.Empty(t, result.Similar)
			assert.Equal(t, []string{keyword}, result.Keywords)
			assert.Equal(t, 100, result.Originality.Score)
			assert.Equal(t, models.BandHigh, result.Originality.Band)
			assert.False(t, result.Summary.IsStructured())
		})
	}
}

func TestAnalyzeMalformedSummary(t *testing.T) {
	src := fridgeSource()
	src.candidates = nil
	model := scriptedModel("This project is a fridge.", "fridge", nil)
	a := newAnalyzer(src, model, logger.NewTestLogger())

	result, err := a.Analyze(context.Background(), "fridge")
	require.NoError(t, err)
	assert.False(t, result.Summary.IsStructured())
	assert.Equal(t, "This project is a fridge.", result.Summary.Raw())
}

func TestAnalyzeDropsFailedCandidates(t *testing.T) {
	src := fridgeSource()
	src.candidates = []models.SearchCandidate{{ID: "a"}, {ID: "gone"}, {ID: "b"}, {ID: "also-gone"}}
	model := scriptedModel("{}", "fridge", map[string]string{
		"MARK-A": similarityJSON(5, 5, 5),
		"MARK-B": "not json at all",
	})
	a := newAnalyzer(src, model, logger.NewTestLogger())

	result, err := a.Analyze(context.Background(), "fridge")
	require.NoError(t, err)

	// 4 attempted, 2 failed to fetch
	require.Len(t, result.Similar, 2)
	assert.Equal(t, "a", result.Similar[0].Project.ID)
	assert.False(t, result.Similar[1].Similarity.IsStructured())
	assert.Equal(t, "not json at all", result.Similar[1].Similarity.Raw())
}

func TestAnalyzeModelDown(t *testing.T) {
	src := fridgeSource()
	model := llm.NewMockClient(func(context.Context, string) (string, error) {
		return "", fmt.Errorf("503")
	})
	a := newAnalyzer(src, model, logger.NewTestLogger())

	result, err := a.Analyze(context.Background(), "fridge")
	require.NoError(t, err)
	assert.Empty(t, result.Summary.Raw())
	assert.Empty(t, result.Keywords)
	assert.Empty(t, result.Similar)
	assert.Zero(t, atomic.LoadInt32(&src.searches))
}

func TestAnalyzeText(t *testing.T) {
	src := fridgeSource()
	model := scriptedModel("{}", "fridge", map[string]string{
		"MARK-A": similarityJSON(3, 3, 3),
		"MARK-B": similarityJSON(1, 1, 1),
	})
	a := newAnalyzer(src, model, logger.NewTestLogger())

	result, err := a.AnalyzeText(context.Background(), "  "+fridgeDescription+"  ")
	require.NoError(t, err)
	assert.Equal(t, IdeaTitle, result.Project.Title)
	assert.Empty(t, result.Project.ID)
	assert.Equal(t, fridgeDescription, result.Project.Description)
	// without a source id, the fridge project itself is a candidate
	assert.Len(t, result.Similar, 3)
}

func TestAnalyzeURL(t *testing.T) {
	src := fridgeSource()
	src.candidates = nil
	a := newAnalyzer(src, scriptedModel("{}", "fridge", nil), logger.NewTestLogger())

	result, err := a.AnalyzeURL(context.Background(), "https://devpost.com/software/fridge")
	require.NoError(t, err)
	assert.Equal(t, "fridge", result.Project.ID)

	_, err = a.AnalyzeURL(context.Background(), "https://example.com/software/fridge")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestAnalyzeTimeout(t *testing.T) {
	src := fridgeSource()
	model := llm.NewMockClient(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	log := logger.NewTestLogger()
	rc := &retry.Config{MaxAttempts: 3, Backoff: &retry.ConstantBackoff{Delay: time.Millisecond}, RetryIf: retry.RetryAll}
	a := New(Deps{
		Source:     src,
		Summarizer: analysis.NewSummarizer(model, rc, log),
		Keywords:   analysis.NewKeywordExtractor(model, rc, log),
		Scorer:     analysis.NewSimilarityScorer(model, rc, log),
	}, config.AnalysisConfig{Timeout: 30 * time.Millisecond}, log)

	_, err := a.Analyze(context.Background(), "fridge")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// recordingObserver collects callbacks
type recordingObserver struct {
	mu       sync.Mutex
	stages   []Stage
	found    int
	scored   []string
	dropped  []string
	finished bool
}

func (r *recordingObserver) StageStarted(s Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, s)
}
func (r *recordingObserver) CandidatesFound(n int) { r.found = n }
func (r *recordingObserver) CandidateScored(ref models.ProjectRef, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scored = append(r.scored, ref.ID)
}
func (r *recordingObserver) CandidateDropped(id string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, id)
}
func (r *recordingObserver) Finished(*models.Analysis, error) { r.finished = true }

func TestAnalyzeObserver(t *testing.T) {
	src := fridgeSource()
	src.candidates = append(src.candidates, models.SearchCandidate{ID: "gone"})
	model := scriptedModel("{}", "fridge", map[string]string{
		"MARK-A": similarityJSON(3, 3, 3),
		"MARK-B": similarityJSON(1, 1, 1),
	})
	a := newAnalyzer(src, model, logger.NewTestLogger())
	obs := &recordingObserver{}
	a.SetObserver(obs)

	_, err := a.Analyze(context.Background(), "fridge")
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageFetch, StageSummarize, StageSearch, StageScore, StageRank}, obs.stages)
	assert.Equal(t, 3, obs.found)
	assert.ElementsMatch(t, []string{"a", "b"}, obs.scored)
	assert.Equal(t, []string{"gone"}, obs.dropped)
	assert.True(t, obs.finished)
}

func TestRankStable(t *testing.T) {
	mk := func(id string, score float64, structured bool) models.RankedProject {
		sim := models.Raw[models.SimilarityResult]("raw")
		if structured {
			sim = models.Structured(models.SimilarityResult{Overall: models.SimilaritySection{Score: score}})
		}
		return models.RankedProject{Project: models.ProjectRef{ID: id}, Similarity: sim}
	}
	ranked := []models.RankedProject{
		mk("raw", 0, false), mk("three", 3, true), mk("zero", 0, true), mk("nine", 9, true), mk("three-b", 3, true),
	}
	Rank(ranked)

	var ids []string
	for _, r := range ranked {
		ids = append(ids, r.Project.ID)
	}
	assert.Equal(t, []string{"nine", "three", "three-b", "raw", "zero"}, ids)
}

func TestScoreOriginality(t *testing.T) {
	mk := func(score float64) models.RankedProject {
		return models.RankedProject{Similarity: models.Structured(models.SimilarityResult{Overall: models.SimilaritySection{Score: score}})}
	}

	tests := []struct {
		name   string
		ranked []models.RankedProject
		score  int
		band   models.Band
	}{
		{"none", nil, 100, models.BandHigh},
		{"weak match", []models.RankedProject{mk(2)}, 80, models.BandHigh},
		{"boundary high", []models.RankedProject{mk(2.5)}, 75, models.BandHigh},
		{"medium", []models.RankedProject{mk(1), mk(5)}, 50, models.BandMedium},
		{"low", []models.RankedProject{mk(7)}, 30, models.BandLow},
		{"clamped", []models.RankedProject{mk(12)}, 0, models.BandLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := ScoreOriginality(tt.ranked)
			assert.Equal(t, tt.score, o.Score)
			assert.Equal(t, tt.band, o.Band)
		})
	}
}
