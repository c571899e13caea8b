package enrich

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/models"
)

// mockFetcher serves projects from a map; ids in panics blow up
type mockFetcher struct {
	projects map[string]*models.Project
	panics   map[string]bool
	delay    time.Duration
	calls    int32

	mu       sync.Mutex
	inFlight int
	peak     int
}

func (m *mockFetcher) GetProject(ctx context.Context, id string) *models.Project {
	atomic.AddInt32(&m.calls, 1)

	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.peak {
		m.peak = m.inFlight
	}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.panics[id] {
		panic("boom")
	}
	return m.projects[id]
}

// mockScorer scores by looking up the candidate description
type mockScorer struct {
	scores map[string]float64
}

func (m *mockScorer) Score(_ context.Context, _, candidate string) models.Parsed[models.SimilarityResult] {
	s, ok := m.scores[candidate]
	if !ok {
		return models.Raw[models.SimilarityResult]("not json")
	}
	return models.Structured(models.SimilarityResult{Overall: models.SimilaritySection{Score: s}})
}

func project(id, desc string) *models.Project {
	return &models.Project{ID: id, Title: "Title " + id, Description: desc, Images: []string{}}
}

func candidates(ids ...string) []models.SearchCandidate {
	out := make([]models.SearchCandidate, len(ids))
	for i, id := range ids {
		out[i] = models.SearchCandidate{ID: id}
	}
	return out
}

func TestWorkerPoolRun(t *testing.T) {
	fetcher := &mockFetcher{projects: map[string]*models.Project{
		"a": project("a", "desc a"),
		"b": project("b", "desc b"),
		"c": project("c", "desc c"),
	}}
	scorer := &mockScorer{scores: map[string]float64{"desc a": 7, "desc b": 1}}

	pool := NewWorkerPool(context.Background(), 2, fetcher, scorer, "source", logger.NewTestLogger())
	results := pool.Run(candidates("a", "b", "c"))

	require.Len(t, results, 3)
	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, i, results[i].Job.Index)
		require.NotNil(t, results[i].Ranked, id)
		assert.Equal(t, id, results[i].Ranked.Project.ID)
		assert.NoError(t, results[i].Error)
	}
	assert.Equal(t, 7.0, results[0].Ranked.OverallScore())
	assert.False(t, results[2].Ranked.Similarity.IsStructured(), "raw similarity is still a result")
}

func TestWorkerPoolDropsFailures(t *testing.T) {
	fetcher := &mockFetcher{
		projects: map[string]*models.Project{
			"ok":      project("ok", "desc"),
			"empty":   project("empty", ""),
			"panicky": project("panicky", "desc"),
		},
		panics: map[string]bool{"panicky": true},
	}
	scorer := &mockScorer{scores: map[string]float64{"desc": 5}}
	log := logger.NewTestLogger()

	pool := NewWorkerPool(context.Background(), 4, fetcher, scorer, "source", log)
	results := pool.Run(candidates("ok", "missing", "empty", "panicky"))
	require.Len(t, results, 4)

	var ranked int
	for _, r := range results {
		if r.Ranked != nil {
			ranked++
		}
	}
	assert.Equal(t, 1, ranked)
	assert.ErrorIs(t, results[2].Error, ErrNoDescription)
	assert.Error(t, results[1].Error)
	assert.Contains(t, results[3].Error.Error(), "panicked")
	assert.True(t, log.HasMessage("Worker recovered from panic"))
}

func TestWorkerPoolConcurrencyBound(t *testing.T) {
	projects := map[string]*models.Project{}
	var ids []string
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("p%d", i)
		ids = append(ids, id)
		projects[id] = project(id, "d")
	}
	fetcher := &mockFetcher{projects: projects, delay: 5 * time.Millisecond}

	pool := NewWorkerPool(context.Background(), 3, fetcher, &mockScorer{}, "s", logger.NewNopLogger())
	assert.Equal(t, 3, pool.GetActiveWorkers())

	results := pool.Run(candidates(ids...))
	assert.Len(t, results, 30)
	assert.LessOrEqual(t, fetcher.peak, 3)
	assert.Equal(t, int32(30), atomic.LoadInt32(&fetcher.calls))
}

func TestWorkerPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &mockFetcher{projects: map[string]*models.Project{}}
	pool := NewWorkerPool(ctx, 2, fetcher, &mockScorer{}, "s", logger.NewNopLogger())

	done := make(chan []Result)
	go func() { done <- pool.Run(candidates("a", "b", "c", "d", "e", "f", "g")) }()

	select {
	case results := <-done:
		assert.Less(t, len(results), 7)
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop after cancellation")
	}
}

func TestWorkerPoolEmpty(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0, &mockFetcher{}, &mockScorer{}, "s", nil)
	assert.Equal(t, DefaultWorkers, pool.GetActiveWorkers())
	assert.Empty(t, pool.Run(nil))
}

func TestWorkerPoolOnResult(t *testing.T) {
	fetcher := &mockFetcher{projects: map[string]*models.Project{"a": project("a", "d")}}
	pool := NewWorkerPool(context.Background(), 2, fetcher, &mockScorer{}, "s", logger.NewNopLogger())

	var seen []string
	pool.OnResult(func(r Result) { seen = append(seen, r.Job.Candidate.ID) })
	pool.Run(candidates("a", "b"))

	assert.ElementsMatch(t, []string{"a", "b"}, seen)
}
