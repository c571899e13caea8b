package pipeline

import (
	"context"

	"scoreahack/pkg/models"
)

// ProjectSource fetches project pages and runs keyword searches
type ProjectSource interface {
	GetProject(ctx context.Context, id string) *models.Project
	Search(ctx context.Context, query string) []models.SearchCandidate
}

// Summarizer produces the structured description
type Summarizer interface {
	Summarize(ctx context.Context, description string) models.Parsed[models.StructuredSummary]
}

// KeywordExtractor produces search keywords
type KeywordExtractor interface {
	Extract(ctx context.Context, description string) []string
}

// SimilarityScorer compares the source against one candidate
type SimilarityScorer interface {
	Score(ctx context.Context, source, candidate string) models.Parsed[models.SimilarityResult]
}

// Stage names a step of a run
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageSummarize Stage = "summarize"
	StageSearch    Stage = "search"
	StageScore     Stage = "score"
	StageRank      Stage = "rank"
)

// Observer receives progress callbacks. Calls for different candidates may
// arrive from different goroutines.
type Observer interface {
	StageStarted(stage Stage)
	CandidatesFound(n int)
	CandidateScored(ref models.ProjectRef, overall float64)
	CandidateDropped(id string, err error)
	Finished(result *models.Analysis, err error)
}

type nopObserver struct{}

func (nopObserver) StageStarted(Stage)                         {}
func (nopObserver) CandidatesFound(int)                        {}
func (nopObserver) CandidateScored(models.ProjectRef, float64) {}
func (nopObserver) CandidateDropped(string, error)             {}
func (nopObserver) Finished(*models.Analysis, error)           {}
